// Package progress renders a single-line percentage bar to a terminal.
//
// # Usage
//
//	opts := progress.DefaultOptions()
//	opts.Prefix = "Progress:"
//	opts.Suffix = "Complete"
//	opts.Autosize = true
//	bar := progress.New(opts)
//
//	for i := 0; i <= len(items); i++ {
//	    bar.Print(i, len(items))
//	}
//
// # Output Format
//
//	Progress: |██████████████████████------------------------| 45.6% Complete
//
// Every line is written as "\r<line>\r" so the next call overwrites it, and a
// newline is written once iteration reaches total.
package progress
