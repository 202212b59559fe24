// Package challenge recognizes bot-protection interstitials.
//
// Travel sites front their pages with CAPTCHA and "checking your browser"
// walls from vendors such as Cloudflare, PerimeterX, DataDome, AWS WAF and
// Incapsula. A plain HTTP fetch that lands on one of these pages gets no
// useful content, so callers use Detect to decide when to escalate to a
// headless browser.
package challenge
