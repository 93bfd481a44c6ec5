package scraper

// PortalBrowser defines the browser operations the session loop needs.
// pkg/browser implements it over chromedp; tests substitute a fake that
// serves fixture HTML and writes files into the download directory the
// way Chrome would.
type PortalBrowser interface {
	Navigate(url string) error
	PageHTML() (string, error)
	ElementActionable(id string) (bool, error)
	ClickID(id string) error
	ClickNext(selector, disabledClass string) (bool, error)
	Close()
}
