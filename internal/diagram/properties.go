package diagram

import "maps"

// Properties holds free-form entity attributes such as fill, stroke or text.
//
// Stored Properties are never modified in place; use Clone or Merge to
// derive new maps.
type Properties map[string]any

// Clone returns a shallow copy. A nil receiver yields nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Merge returns a new map with patch applied over p.
func (p Properties) Merge(patch Properties) Properties {
	out := make(Properties, len(p)+len(patch))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Subset returns the entries of p whose keys appear in keys.
// Keys missing from p are skipped, so the result may be smaller than keys.
func (p Properties) Subset(keys Properties) Properties {
	out := make(Properties)
	for k := range keys {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Has reports whether key is present.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}
