// Package testutil holds small helpers shared by package tests.
package testutil

import (
	"time"
)

type testFn func() (bool, error)
type errorFn func(error)

// WaitForResult polls the test function until it reports success or
// the retry budget is exhausted, at which point the error function is
// invoked with the last error.
func WaitForResult(test testFn, error errorFn) {
	retries := 500

	for retries > 0 {
		time.Sleep(10 * time.Millisecond)
		retries--

		success, err := test()
		if success {
			return
		}

		if retries == 0 {
			error(err)
		}
	}
}
