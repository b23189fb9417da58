// Package cmd implements the echocheck CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the contract checks against a base URL
//   - probe: Fetch a list of URLs once and print what came back
//   - serve: Start the local httpbin-compatible echo server
//   - list: Display the built-in checks
//   - version: Show echocheck version information
//
// Flag defaults can be set through ECHOCHECK_-prefixed environment
// variables, a .env file, or a config file.
package cmd
