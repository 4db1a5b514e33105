package speed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// cpuInfo describes the machine the speed table was measured on.
type cpuInfo struct {
	// Model name, "unknown" if it cannot be determined
	name string
	// AES instructions available (AES-NI or the ARMv8 crypto extension)
	aes bool
}

func (c cpuInfo) String() string {
	return fmt.Sprintf("%s; with AES acceleration: %v", c.name, c.aes)
}

// getCPUInfo returns the model name from /proc/cpuinfo and the AES flag
// from x/sys/cpu.
func getCPUInfo() cpuInfo {
	info := cpuInfo{
		name: "unknown",
		aes:  cpu.X86.HasAES || cpu.ARM64.HasAES,
	}
	if runtime.GOOS != "linux" {
		return info
	}
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return info
	}
	defer f.Close()
	if name := parseModelName(f); name != "" {
		info.name = name
	}
	return info
}

// parseModelName looks for "model name" in cpuinfo-formatted text. ARM
// boards often only have "Hardware", for example "Hardware : BCM2835" on a
// Raspberry Pi 4, which is used as the fallback.
func parseModelName(r io.Reader) string {
	var hardware string
	s := bufio.NewScanner(r)
	for s.Scan() {
		parts := strings.SplitN(s.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "model name":
			return val
		case "Hardware":
			if hardware == "" {
				hardware = val
			}
		}
	}
	return hardware
}
