package diagram

// Connector types.
const (
	ConnectorStraight   = "straight"
	ConnectorOrthogonal = "orthogonal"
	ConnectorCurved     = "curved"
)

// Route is the geometric path of a connector.
type Route struct {
	Source    Point   `json:"source"`
	Target    Point   `json:"target"`
	Waypoints []Point `json:"waypoints,omitempty"`
}

// Clone returns a copy with its own waypoint slice.
func (r Route) Clone() Route {
	if r.Waypoints != nil {
		r.Waypoints = append([]Point(nil), r.Waypoints...)
	}
	return r
}

// Translate returns the route shifted by delta.
func (r Route) Translate(delta Point) Route {
	out := Route{Source: r.Source.Add(delta), Target: r.Target.Add(delta)}
	if r.Waypoints != nil {
		out.Waypoints = make([]Point, len(r.Waypoints))
		for i, p := range r.Waypoints {
			out.Waypoints[i] = p.Add(delta)
		}
	}
	return out
}

// Connector is an edge between two points, optionally attached to shapes.
// An empty SourceID or TargetID means that end floats freely.
type Connector struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	SourceID string     `json:"sourceId,omitempty"`
	TargetID string     `json:"targetId,omitempty"`
	Route    Route      `json:"route"`
	Props    Properties `json:"props,omitempty"`
}

// References reports whether either endpoint is attached to shapeID.
func (c Connector) References(shapeID string) bool {
	return shapeID != "" && (c.SourceID == shapeID || c.TargetID == shapeID)
}

// Clone returns a copy that shares nothing mutable with c.
func (c Connector) Clone() Connector {
	c.Route = c.Route.Clone()
	c.Props = c.Props.Clone()
	return c
}
