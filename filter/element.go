package filter

import (
	"fmt"
	"strconv"
)

// Canonical returns the deterministic string form of an element. Each kind
// carries a distinct tag so values of different types never share a form:
// 1 and "1" map to different index sets.
func Canonical(elem any) string {
	switch v := elem.(type) {
	case string:
		return "s:" + v
	case []byte:
		return "b:" + string(v)
	case int:
		return "i:" + strconv.FormatInt(int64(v), 10)
	case int8:
		return "i:" + strconv.FormatInt(int64(v), 10)
	case int16:
		return "i:" + strconv.FormatInt(int64(v), 10)
	case int32:
		return "i:" + strconv.FormatInt(int64(v), 10)
	case int64:
		return "i:" + strconv.FormatInt(v, 10)
	case uint:
		return "u:" + strconv.FormatUint(uint64(v), 10)
	case uint8:
		return "u:" + strconv.FormatUint(uint64(v), 10)
	case uint16:
		return "u:" + strconv.FormatUint(uint64(v), 10)
	case uint32:
		return "u:" + strconv.FormatUint(uint64(v), 10)
	case uint64:
		return "u:" + strconv.FormatUint(v, 10)
	case float32:
		return "f:" + strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return "f:" + strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return "t:" + strconv.FormatBool(v)
	case fmt.Stringer:
		return "r:" + v.String()
	default:
		return "v:" + fmt.Sprintf("%v", v)
	}
}
