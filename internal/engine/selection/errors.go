package selection

import "errors"

// ErrEmptySelection indicates a range edit with nothing selected.
var ErrEmptySelection = errors.New("selection is empty")
