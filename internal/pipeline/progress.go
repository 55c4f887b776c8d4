package pipeline

import "github.com/On-Jun9/NamePipe/pkg/types"

type ProgressCallback func(update ProgressUpdate)

// ProgressUpdate is streamed to the CLI progress bar and to web clients.
// Type is one of "status", "plan", "progress", "complete" or "error".
type ProgressUpdate struct {
	Type     string             `json:"type"`
	Message  string             `json:"message,omitempty"`
	Current  int                `json:"current,omitempty"`
	Total    int                `json:"total,omitempty"`
	Filename string             `json:"filename,omitempty"`
	NewName  string             `json:"newName,omitempty"`
	Action   types.RenameAction `json:"action,omitempty"`
	Plan     *types.RenamePlan  `json:"plan,omitempty"`
	Summary  *types.RunSummary  `json:"summary,omitempty"`
	Error    string             `json:"error,omitempty"`
}
