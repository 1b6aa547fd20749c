package params

import "strconv"

// Indexed builds a multiparm instance name such as "objpath2".
func Indexed(parm string, i int) string {
	return parm + strconv.Itoa(i)
}
