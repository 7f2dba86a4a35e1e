package core

import "errors"

// ErrCacheRejected is returned when the cache declines to admit an
// entry, for example under memory pressure.
var ErrCacheRejected = errors.New("cache rejected entry")
