// Package main provides the twitter-analyzer CLI.
//
// It runs the analysis server, which scrapes a public profile and ranks its
// tweets by engagement, and a terminal client that submits a profile to the
// server and prints the top tweets once the job completes.
//
// Usage:
//
//	twitter-analyzer serve
//	twitter-analyzer analyze https://x.com/username
//	twitter-analyzer analyze --local username
//
// See --help for all available options.
package main

func main() {
	Execute()
}
