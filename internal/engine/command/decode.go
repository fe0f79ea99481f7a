package command

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/drawstorm/internal/engine/history"
)

func decodePayload[T payload](raw json.RawMessage) (payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

var decoders = map[Kind]func(json.RawMessage) (payload, error){
	KindAddShape:                  decodePayload[AddShapeData],
	KindDeleteShapes:              decodePayload[DeleteShapesData],
	KindMoveShapes:                decodePayload[MoveShapesData],
	KindResizeShape:               decodePayload[ResizeShapeData],
	KindUpdateShapeProperties:     decodePayload[UpdateShapePropertiesData],
	KindReorderShapes:             decodePayload[ReorderShapesData],
	KindGroupShapes:               decodePayload[GroupShapesData],
	KindUngroupShapes:             decodePayload[UngroupShapesData],
	KindAddConnector:              decodePayload[AddConnectorData],
	KindDeleteConnectors:          decodePayload[DeleteConnectorsData],
	KindMoveConnectors:            decodePayload[MoveConnectorsData],
	KindUpdateConnectorProperties: decodePayload[UpdateConnectorPropertiesData],
	KindReorderConnectors:         decodePayload[ReorderConnectorsData],
	KindAddSheet:                  decodePayload[AddSheetData],
	KindRenameSheet:               decodePayload[RenameSheetData],
	KindDeleteSheet:               decodePayload[DeleteSheetData],
	KindSetSelection:              decodePayload[SetSelectionData],
}

// Decode rebuilds a command from its record, bound to st.
//
// Records carry no schema version; decoding assumes the payload layout of
// the running build.
func Decode(st State, rec history.Record) (history.Command, error) {
	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Type, err)
	}

	if rec.Type == history.KindBatch {
		var batch struct {
			Name     string           `json:"name"`
			Commands []history.Record `json:"commands"`
		}
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.Type, err)
		}
		cmds := make([]history.Command, 0, len(batch.Commands))
		for _, child := range batch.Commands {
			cmd, err := Decode(st, child)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, cmd)
		}
		return history.NewCompoundCommandAt(batch.Name, rec.Timestamp, cmds...), nil
	}

	dec, ok := decoders[Kind(rec.Type)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Type)
	}
	p, err := dec(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Type, err)
	}
	return &Command{state: st, payload: p, timestamp: rec.Timestamp}, nil
}

// DecodeSnapshot rebuilds both history stacks from their JSON form.
func DecodeSnapshot(st State, data []byte) (undo, redo []history.Command, err error) {
	var snap history.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("decode history: %w", err)
	}
	if undo, err = decodeAll(st, snap.Undo); err != nil {
		return nil, nil, err
	}
	if redo, err = decodeAll(st, snap.Redo); err != nil {
		return nil, nil, err
	}
	return undo, redo, nil
}

func decodeAll(st State, recs []history.Record) ([]history.Command, error) {
	out := make([]history.Command, 0, len(recs))
	for _, rec := range recs {
		cmd, err := Decode(st, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}
