// Command diffcalc evaluates a sample multivariate function with full
// derivative information and prints the results as JSON.
//
// The derivative shape and the evaluation grid are configured through
// environment variables (see internal/config); -pretty indents the output.
package main
