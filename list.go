package groundlink

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// allow tests to override platform enumeration
var (
	getPortsList         = serial.GetPortsList
	getDetailedPortsList = enumerator.GetDetailedPortsList
	goos                 = runtime.GOOS
)

// ListPorts returns the serial devices currently present, sorted by name
func ListPorts() ([]string, error) {
	ports, err := enumeratedPorts()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

// enumeratedPorts returns the devices in the order the platform reports them
func enumeratedPorts() ([]string, error) {
	ports, err := getPortsList()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ports))
	for _, p := range ports {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// DefaultCandidates returns the device names worth trying first on this platform
func DefaultCandidates() []string {
	if goos == "windows" {
		candidates := make([]string, 0, 20)
		for i := 1; i <= 20; i++ {
			candidates = append(candidates, fmt.Sprintf("COM%d", i))
		}
		return candidates
	}
	return []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyACM0", "/dev/ttyACM1"}
}

// PickPort returns the first candidate that is currently enumerated, falling
// back to the first port in platform enumeration order. With no candidates the platform defaults
// are used. It returns "" when nothing is connected. PickPort never opens a port.
func PickPort(candidates ...string) string {
	ports, err := enumeratedPorts()
	if err != nil {
		return ""
	}
	return pickFrom(ports, candidates)
}

func pickFrom(available, candidates []string) string {
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}

	present := make(map[string]struct{}, len(available))
	for _, p := range available {
		present[p] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := present[c]; ok {
			return c
		}
	}

	if len(available) > 0 {
		return available[0]
	}
	return ""
}

// PortInfo describes a serial device for diagnostics
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
}

// ListPortDetails returns PortInfo for every enumerated port, sorted by path
func ListPortDetails() ([]PortInfo, error) {
	details, err := getDetailedPortsList()
	if err != nil {
		return nil, err
	}

	infos := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		infos = append(infos, portInfoFromDetails(d))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	infos, err := ListPortDetails()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Path == portPath {
			return &info, nil
		}
	}
	return nil, ErrDeviceNotFound
}

func portInfoFromDetails(d *enumerator.PortDetails) PortInfo {
	name := filepath.Base(d.Name)
	info := PortInfo{
		Name:         name,
		Path:         d.Name,
		Description:  getPortDescription(name),
		IsUSB:        d.IsUSB,
		VendorID:     d.VID,
		ProductID:    d.PID,
		SerialNumber: d.SerialNumber,
	}
	if d.IsUSB && d.Product != "" {
		info.Description = d.Product
	}
	return info
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "cu.") || strings.HasPrefix(name, "tty."):
		return "macOS Serial Device"
	case strings.HasPrefix(strings.ToUpper(name), "COM"):
		return "Windows COM Port"
	default:
		return "Serial Port"
	}
}
