package area

import "errors"

var ErrAreaNotFound = errors.New("disaster area not found")
