// Package dbg has helpers for looking at solver runs: readable names for
// runs and values, and PNG renderings of solved rooms.
package dbg

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
)

var (
	memoMu sync.Mutex
	memo   = make(map[interface{}]string)
)

func init() {
	petname.NonDeterministicMode()
}

// Name turns arbitrary comparable values (usually pointers) into random
// readable names. The memo is never pruned, so only use it while debugging.
// Names are handed out in order of demand, so the same name does not refer to
// the same thing between runs.
func Name(obj interface{}) string {
	if isNil(obj) {
		return "Ø"
	}

	memoMu.Lock()
	defer memoMu.Unlock()
	if r, ok := memo[obj]; ok {
		return r
	}
	r := fmt.Sprintf("%s%s", title(petname.Adjective()), title(petname.Name()))
	memo[obj] = r
	return r
}

// RunName returns a fresh name for one CLI run, such as "brave-otter", for
// tying log lines and output files together.
func RunName() string {
	return petname.Generate(2, "-")
}

func isNil(obj interface{}) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
