package config

import "errors"

// ErrInvalidSetting indicates a setting value outside its allowed range.
// Validation errors wrap it together with the setting path.
var ErrInvalidSetting = errors.New("invalid setting")
