package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconMovie    = "\U000F0381" // 󰎁
	IconShow     = "\U000F0839" // 󰠹
	IconCalendar = ""     // 
	IconSearch   = ""     // 
	IconList     = ""     // 
	IconLogs     = ""     // 
	IconGear     = ""     // 
)

// Status icons shared by toasts, service health, and batch outcome lines.
var (
	IconOK      = "✓"
	IconFail    = "✗"
	IconSkip    = "−"
	IconPending = "…"

	IconNotifyInfo    = "" // 
	IconNotifySuccess = "\u2713"
	IconNotifyWarning = "" // 
	IconNotifyError   = "" // 
)
