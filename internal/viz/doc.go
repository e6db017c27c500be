// Package viz renders solutions and run summaries for the terminal.
//
//   - [Chart]: asciigraph line chart of one state component
//   - [Summary]: styled panel with solver statistics and metrics
//   - [SparklineChart], [ProgressBar]: compact widgets shared with the
//     watch view
package viz
