//go:build linux || darwin || freebsd

// +build linux darwin freebsd

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
)

func init() {
	go sigHandler()
}

// sigHandler raises the process-wide stop flag on SIGINT (§5
// "Cancellation"). On SIGUSR1 it logs that a counters dump was
// requested and keeps running; it does not print any counter values.
func sigHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGUSR1)
	signal.Ignore(syscall.SIGPIPE)

	for sig := range ch {
		switch sig {
		case syscall.SIGINT:
			log.Println("SIGINT received, stopping at next block boundary")
			stop.Set()
		case syscall.SIGUSR1:
			log.Println("SIGUSR1 received: counters dump requested")
		}
	}
}
