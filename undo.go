package main

func (m *model) recordAction(actionType ActionType, data, inverse interface{}, message string) {
	m.history.Append(Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
		Message: message,
	})
	m.history.ClearRedo()
}

func (m *model) undo() {
	action, ok := m.history.popUndo()
	if !ok {
		m.errorMessage = "Nothing to undo"
		return
	}

	d := m.diagram
	switch action.Type {
	case ActionResizeTable:
		data := action.Inverse.(ResizeTableData)
		d.UpdateTable(data.TableID, data.Patch)
	case ActionMoveTable:
		data := action.Inverse.(MoveTableData)
		d.MoveTable(data.TableID, data.X, data.Y)
	case ActionAddRelationship:
		data := action.Data.(RelationshipData)
		d.RemoveRelationship(data.Relationship.ID)
	case ActionDeleteTable:
		data := action.Data.(DeleteTableData)
		d.RestoreTable(data.Table, data.Index)
		for _, r := range data.Relationships {
			d.RestoreRelationship(r)
		}
	case ActionDeleteField:
		data := action.Data.(DeleteFieldData)
		d.RestoreField(data.TableID, data.Field, data.Index)
		for _, r := range data.Relationships {
			d.RestoreRelationship(r)
		}
	case ActionLockTable:
		data := action.Inverse.(LockTableData)
		d.SetLocked(data.TableID, data.Locked)
	}

	m.history.pushRedo(action)
	m.successMessage = "Undo: " + action.Message
}

func (m *model) redo() {
	action, ok := m.history.popRedo()
	if !ok {
		m.errorMessage = "Nothing to redo"
		return
	}

	d := m.diagram
	switch action.Type {
	case ActionResizeTable:
		data := action.Data.(ResizeTableData)
		d.UpdateTable(data.TableID, data.Patch)
	case ActionMoveTable:
		data := action.Data.(MoveTableData)
		d.MoveTable(data.TableID, data.X, data.Y)
	case ActionAddRelationship:
		data := action.Data.(RelationshipData)
		d.RestoreRelationship(data.Relationship)
	case ActionDeleteTable:
		data := action.Data.(DeleteTableData)
		d.DeleteTable(data.Table.ID)
	case ActionDeleteField:
		data := action.Data.(DeleteFieldData)
		d.DeleteField(data.TableID, data.Field.ID)
	case ActionLockTable:
		data := action.Data.(LockTableData)
		d.SetLocked(data.TableID, data.Locked)
	}

	m.history.pushUndo(action)
	m.successMessage = "Redo: " + action.Message
}
