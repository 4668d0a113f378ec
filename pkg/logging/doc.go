// Package logging configures the process-wide zerolog logger for the Pokédex
// client and hands out per-component child loggers.
//
// Call Setup once at startup, then take a logger per package:
//
//	logging.Setup(logging.Config{Level: logging.LevelDebug, Pretty: true, Output: os.Stderr})
//	logger := logging.NewLogger("pagestate")
//	logging.WithPage(logger, 3, 40, 20).Debug().Msg("Page loaded")
//
// The terminal browser owns the screen, so it runs with LevelDisabled or an
// Output pointing at a log file (NoColor keeps ANSI escapes out of the file).
//
// Levels used across the module:
//
//	debug  cache hits and misses, page loads, superseded generations,
//	       ignored page changes, shared detail fetches
//	info   server start and stop, prefetch summary, selected cache backend
//	warn   cache read/write failures (the page is fetched anyway),
//	       failed detail fetches, failed prefetch pages
//	error  failed page loads, PokeAPI unreachable, invalid configuration
//
// Common fields:
//
//	component     emitting package: pagestate, pokeapi-client, catalog,
//	              prefetcher, tui, web
//	page, offset, limit
//	              catalog page coordinates (see WithPage)
//	generation    page load token
//	cache_hit     whether a load was served from the session cache
//	endpoint      PokeAPI endpoint label, e.g. "pokemon-list"
//	status        HTTP status code
//	error_class   client, server, network or decode
package logging
