// Package render loads pages in a headless Chromium to get HTML that only
// exists after JavaScript runs or a bot check passes.
//
// Two engines implement Renderer: Chromedp (the default, speaks the
// DevTools protocol directly) and Rod. Both share one browser per process,
// launched lazily on the first Render call; concurrent first calls are
// collapsed with singleflight so only one browser starts. Each Render
// opens its own tab and closes it afterwards, so requests never share
// page state.
//
// A missing browser binary is a capability gap rather than a failure:
// Render returns ErrUnavailable and callers carry on with the HTML they
// already have.
package render
