package preview

import "errors"

// ErrSuperseded reports that a newer preview request won the race; the
// render completed but was discarded before presentation.
var ErrSuperseded = errors.New("preview superseded by a newer request")
