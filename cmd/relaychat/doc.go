// Package main is the relaychat command-line client.
package main
