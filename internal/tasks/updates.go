package tasks

import (
	"fmt"

	"github.com/dhmun/mediapack/internal/models"
)

// ProgressUpdate represents a progress event during pack creation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Workflow phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Workflow phase enumeration
type Phase int

const (
	Validate Phase = iota
	AssignSerial
	CreateRow
	Reconcile
	WriteMembership
	Done
)

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case AssignSerial:
		return "assign_serial"
	case CreateRow:
		return "create_row"
	case Reconcile:
		return "reconcile"
	case WriteMembership:
		return "write_membership"
	case Done:
		return "done"
	default:
		return ""
	}
}

func validateUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Message: "Validating pack proposal...",
	}
}

func assignSerialUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssignSerial,
		Message: "Assigning serial number...",
	}
}

func createRowUpdate(serial int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateRow,
		Message: fmt.Sprintf("Creating pack #%d...", serial),
	}
}

func reconcileUpdate(trackCount int) ProgressUpdate {
	msg := "No external tracks to reconcile"
	if trackCount > 0 {
		msg = fmt.Sprintf("Reconciling %d music tracks...", trackCount)
	}
	return ProgressUpdate{
		Phase:   Reconcile,
		Message: msg,
	}
}

func membershipUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteMembership,
		Message: fmt.Sprintf("Writing %d membership rows...", count),
	}
}

func doneUpdate(pack *models.Pack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Message: fmt.Sprintf("Pack created: %s (#%d)", pack.ShareSlug(), pack.Serial()),
		Data:    pack,
	}
}
