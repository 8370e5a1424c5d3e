package tui

const unknownViewType = "unknown"

// ViewType represents which view is active.
type ViewType int

const (
	ViewDashboard ViewType = iota
	ViewLibrary
	ViewSearch
	ViewMassOps
	ViewCalendar
	ViewLogs
	ViewSettings
)

// allViews orders the tab bar.
var allViews = []ViewType{
	ViewDashboard,
	ViewLibrary,
	ViewSearch,
	ViewMassOps,
	ViewCalendar,
	ViewLogs,
	ViewSettings,
}

// String returns the lowercase name of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewLibrary:
		return "library"
	case ViewSearch:
		return "search"
	case ViewMassOps:
		return "mass ops"
	case ViewCalendar:
		return "calendar"
	case ViewLogs:
		return "logs"
	case ViewSettings:
		return "settings"
	default:
		return unknownViewType
	}
}
