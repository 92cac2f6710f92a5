// Package main provides the entry point for the chartmask CLI.
//
// chartmask builds text-region training data from figures in scientific
// PDFs and evaluates text detectors trained on it.
//
// Usage:
//
//	chartmask label paper.pdf out/
//	chartmask findbad out/json
//	chartmask predict pred.png chart.png
//	chartmask rate predictions.txt
//	chartmask serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
