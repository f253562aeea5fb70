// Package system handles process-level housekeeping: file descriptor
// limits and a host resource report logged before the model load.
package system

import (
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// InitResourceLimits raises the open-file soft limit. Frame sequences and
// the ONNX runtime together can exceed conservative defaults.
func InitResourceLimits(log logrus.FieldLogger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.WithError(err).Warn("could not read file descriptor limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.WithError(err).Warn("could not raise file descriptor limit")
	} else {
		log.WithField("nofile", rLimit.Cur).Debug("file descriptor limit raised")
	}
}

// LogHostInfo reports CPU count and memory headroom. The depth model
// needs a few hundred MB resident; logging this up front makes OOM kills
// on small hosts explainable after the fact.
func LogHostInfo(log logrus.FieldLogger) {
	fields := logrus.Fields{"cpus": runtime.NumCPU()}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields["mem_total_mb"] = vm.Total / (1 << 20)
		fields["mem_available_mb"] = vm.Available / (1 << 20)
	}
	log.WithFields(fields).Debug("host resources")
}
