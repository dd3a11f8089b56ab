// Package core provides a small, stable facade over treehash's internal
// engine for programs that maintain ledgers themselves.
//
// Example:
//
//	files, _ := core.Select(core.SelectOptions{Root: "/data"})
//	var out bytes.Buffer
//	res, err := core.Run(core.Config{Mode: core.ModeUpdate, Root: "/data", Files: files, Destination: &out})
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
