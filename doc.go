// Package scopetimer measures nested, named scopes of code and reports the
// time spent in each call path.
//
// Scopes are opened with Enter and closed with Exit, or paired automatically
// with Profile, Wrap and WrapFunc:
//
//	func load() error {
//		defer scopetimer.Profile("load").End()
//		...
//	}
//
// Every goroutine keeps its own stack of open scopes. Completed scopes are
// merged by call path into one process-wide tree, so repeated and concurrent
// executions of the same path accumulate into a single node holding count,
// total, min, max and variance.
//
// Summarize prints the tree:
//
//	[pipeline] 40.0000ms / 1x
//	├── [preprocess]  25.0000ms / 1x (62%)
//	│   ├── [load_data]  10.0000ms / 1x (40%)
//	│   └── [clean_data] 15.0000ms / 1x (60%)
//	└── [postprocess]  5.0000ms / 1x (12%)
//	    └── [save_results] 5.0000ms / 1x (100%)
//	overall_time: 40.0000ms
//
// Setting SCOPE_TIMER_ENABLE=0 turns every call into a single atomic load.
// Report defaults can be set in a scopetimer.toml found in the working
// directory or any parent:
//
//	[report]
//	unit = "ms"        # auto | s | ms | us
//	precision = "auto" # or an integer
//	divider = "rule"   # rule | blank
//	verbose = false
//
//	[log]
//	level = "warn"
//
// The package-level functions use a lazily created default Timer; New builds
// independent instances.
package scopetimer
