// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cliutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ExitCode is an error value that instructs the program to exit with a
// certain exit code. The program must call cliutil.Exit in its main
// function to handle ExitCode errors.
type ExitCode int

func (e ExitCode) Error() string {
	return fmt.Sprintf("exit code %d", int(e))
}

// Exit terminates the program by calling os.Exit. If err contains
// ExitCode, it exits with that code; any other error is logged first.
//
// The function never returns. Beware that deferred function calls are
// not triggered.
func Exit(err error) {
	var code ExitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
	os.Exit(0)
}
