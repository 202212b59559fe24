// Package main provides the entry point for the HotelLens CLI.
//
// HotelLens finds hotels near a point and sorts them by whether an
// 18 year old guest can check in.
//
// Usage:
//
//	hotellens search --city sacramento
//	hotellens serve --listen :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
