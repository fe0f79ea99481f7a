package command

import (
	"fmt"

	"github.com/dshills/drawstorm/internal/diagram"
)

// forward applies p to doc and returns the new document together with the
// payload, which may now carry state captured during execution.
func forward(doc diagram.Document, p payload) (diagram.Document, payload) {
	switch p := p.(type) {
	case AddShapeData:
		return onSheet(doc, p, p.execute), p
	case DeleteShapesData:
		return deleteForward(doc, p)
	case MoveShapesData:
		return onSheet(doc, p, p.execute), p
	case ResizeShapeData:
		return onSheet(doc, p, p.execute), p
	case UpdateShapePropertiesData:
		return onSheet(doc, p, p.execute), p
	case ReorderShapesData:
		return onSheet(doc, p, p.execute), p
	case GroupShapesData:
		return onSheet(doc, p, p.execute), p
	case UngroupShapesData:
		return onSheet(doc, p, p.execute), p
	case AddConnectorData:
		return onSheet(doc, p, p.execute), p
	case DeleteConnectorsData:
		return deleteConnectorsForward(doc, p)
	case MoveConnectorsData:
		return onSheet(doc, p, p.execute), p
	case UpdateConnectorPropertiesData:
		return onSheet(doc, p, p.execute), p
	case ReorderConnectorsData:
		return onSheet(doc, p, p.execute), p
	case AddSheetData:
		return p.execute(doc), p
	case RenameSheetData:
		return onSheet(doc, p, p.execute), p
	case DeleteSheetData:
		return p.execute(doc)
	case SetSelectionData:
		return onSheet(doc, p, p.execute), p
	default:
		panic(fmt.Sprintf("command: unhandled payload %T", p))
	}
}

// backward reverses p on doc.
func backward(doc diagram.Document, p payload) diagram.Document {
	switch p := p.(type) {
	case AddShapeData:
		return onSheet(doc, p, p.undo)
	case DeleteShapesData:
		return onSheet(doc, p, p.Removed.restore)
	case MoveShapesData:
		return onSheet(doc, p, p.undo)
	case ResizeShapeData:
		return onSheet(doc, p, p.undo)
	case UpdateShapePropertiesData:
		return onSheet(doc, p, p.undo)
	case ReorderShapesData:
		return onSheet(doc, p, p.undo)
	case GroupShapesData:
		return onSheet(doc, p, p.undo)
	case UngroupShapesData:
		return onSheet(doc, p, p.undo)
	case AddConnectorData:
		return onSheet(doc, p, p.undo)
	case DeleteConnectorsData:
		return onSheet(doc, p, p.Removed.restore)
	case MoveConnectorsData:
		return onSheet(doc, p, p.undo)
	case UpdateConnectorPropertiesData:
		return onSheet(doc, p, p.undo)
	case ReorderConnectorsData:
		return onSheet(doc, p, p.undo)
	case AddSheetData:
		return p.undo(doc)
	case RenameSheetData:
		return onSheet(doc, p, p.undo)
	case DeleteSheetData:
		return p.undo(doc)
	case SetSelectionData:
		return onSheet(doc, p, p.undo)
	default:
		panic(fmt.Sprintf("command: unhandled payload %T", p))
	}
}

// onSheet applies fn to the payload's sheet. A missing sheet leaves the
// document unchanged.
func onSheet(doc diagram.Document, p payload, fn func(diagram.Sheet) diagram.Sheet) diagram.Document {
	return doc.UpdateSheet(p.sheet(), fn)
}
