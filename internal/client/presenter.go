package client

import (
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
)

// Control identifies an interactive element the controller can mark busy.
type Control string

const (
	ControlSubmit Control = "submit"
	ControlLocate Control = "locate"
)

// NoticeLevel classifies a transient notice for styling.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message dismissed after TTL.
type Notice struct {
	Level   NoticeLevel
	Message string
	TTL     time.Duration
}

// Presenter is the rendering port the controllers drive. Implementations
// decide how busy states, results, and notices actually appear.
type Presenter interface {
	// ShowBusy toggles the busy state of a control. Controllers always
	// restore the idle state, including on error paths.
	ShowBusy(control Control, busy bool)

	// ShowResult displays a rendered prediction.
	ShowResult(result RenderedResult)

	// Notify displays a transient notice.
	Notify(n Notice)

	// Alert displays a blocking error message.
	Alert(message string)

	// SetLocation fills the location fields from a resolution.
	SetLocation(res domain.LocationResolution)

	// NavigateToResults moves to the results view after a comprehensive
	// prediction has been stored.
	NavigateToResults()
}
