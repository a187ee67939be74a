// Package model provides the data structures shared by the pipeline package and its options.
// It defines the description of a stage, its outcome, and the hook interface every
// pipeline option implements.
package model
