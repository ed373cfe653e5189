package dialogue

import "time"

// timeNow is a package-level variable for testability.
// Tests replace it to get deterministic turn timestamps.
var timeNow = time.Now
