// Package browser drives the Chrome instance used to reach the SRI
// portal, built on chromedp.
//
// A Session is created once per run, launched with download preferences
// that accept downloads without prompting, and torn down via a deferred
// Close. Element interaction happens through programmatic JavaScript
// clicks because the portal's JSF links re-render on every postback and
// plain node clicks race with those re-renders.
//
// The operator authenticates manually in the visible browser window;
// the session never touches credentials.
package browser
