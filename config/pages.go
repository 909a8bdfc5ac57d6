package config

// Page identifies the screen currently shown by the TUI
type Page int

const (
	PageHome Page = iota
	PageGallery
	PageDetail
	PageSend
	PageSettings
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageGallery:
		return "gallery"
	case PageDetail:
		return "detail"
	case PageSend:
		return "send"
	case PageSettings:
		return "settings"
	default:
		return "unknown"
	}
}
