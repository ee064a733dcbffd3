//go:build linux

package volume

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var networkFilesystems = map[string]bool{
	"nfs":         true,
	"nfs4":        true,
	"cifs":        true,
	"smb3":        true,
	"smbfs":       true,
	"afpfs":       true,
	"9p":          true,
	"davfs":       true,
	"fuse.sshfs":  true,
	"fuse.rclone": true,
	"ceph":        true,
	"glusterfs":   true,
}

var virtualFilesystems = map[string]bool{
	"proc":        true,
	"sysfs":       true,
	"devtmpfs":    true,
	"devpts":      true,
	"tmpfs":       true,
	"cgroup":      true,
	"cgroup2":     true,
	"securityfs":  true,
	"pstore":      true,
	"bpf":         true,
	"debugfs":     true,
	"tracefs":     true,
	"mqueue":      true,
	"hugetlbfs":   true,
	"configfs":    true,
	"fusectl":     true,
	"autofs":      true,
	"binfmt_misc": true,
	"overlay":     true,
	"squashfs":    true,
	"nsfs":        true,
	"efivarfs":    true,
	"ramfs":       true,
	"rpc_pipefs":  true,
}

// MountInfoSource enumerates mounted filesystems from /proc/self/mountinfo and
// reads capacities with statfs. Removable and usb hints come from sysfs,
// volume names from /dev/disk/by-label.
type MountInfoSource struct {
	mountInfo string
	sysBlock  string
	byLabel   string
}

func NewMountInfoSource() *MountInfoSource {
	return &MountInfoSource{
		mountInfo: "/proc/self/mountinfo",
		sysBlock:  "/sys/class/block",
		byLabel:   "/dev/disk/by-label",
	}
}

type mount struct {
	mountPoint string
	fsType     string
	device     string
}

func (ms *MountInfoSource) Enumerate(ctx context.Context) ([]Entry, error) {
	f, err := os.Open(ms.mountInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", ms.mountInfo, err)
	}
	defer f.Close()

	mounts, err := parseMountInfo(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ms.mountInfo, err)
	}

	labels := ms.readLabels()
	entries := make([]Entry, 0, len(mounts))

	for _, m := range mounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if virtualFilesystems[m.fsType] {
			continue
		}

		descriptor, err := ms.describe(m, labels)
		entries = append(entries, Entry{
			MountPoint: m.mountPoint,
			Descriptor: descriptor,
			Err:        err,
		})
	}

	return entries, nil
}

func (ms *MountInfoSource) describe(m mount, labels map[string]string) (*Descriptor, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(m.mountPoint, &fs); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", m.mountPoint, err)
	}

	total := int64(fs.Blocks) * int64(fs.Bsize)
	available := int64(fs.Bavail) * int64(fs.Bsize)

	isRoot := m.mountPoint == "/"
	isLocal := !networkFilesystems[m.fsType]

	descriptor := &Descriptor{
		Path:              String(m.mountPoint),
		AvailableCapacity: Int64(available),
		TotalCapacity:     Int64(total),
		TypeName:          String(m.fsType),
		Subtype:           String(m.fsType),
		IsLocal:           Bool(isLocal),
		IsRootFileSystem:  Bool(isRoot),
	}

	if label, ok := labels[m.device]; ok {
		descriptor.Name = String(label)
	} else if !isRoot {
		descriptor.Name = String(filepath.Base(m.mountPoint))
	}

	if !isLocal {
		descriptor.TypeName = String("network " + m.fsType)
		return descriptor, nil
	}

	if hints, ok := ms.blockHints(m.device); ok {
		descriptor.IsRemovable = Bool(hints.removable)
		descriptor.IsEjectable = Bool(hints.removable || hints.usb)

		typeName := m.fsType
		if hints.usb {
			typeName += " usb"
		}
		if !hints.rotational {
			typeName += " ssd"
		}
		descriptor.TypeName = String(typeName)
	}

	return descriptor, nil
}

type blockHints struct {
	removable  bool
	usb        bool
	rotational bool
}

// blockHints inspects the sysfs entry of the whole disk the device belongs to.
func (ms *MountInfoSource) blockHints(device string) (blockHints, bool) {
	if !strings.HasPrefix(device, "/dev/") {
		return blockHints{}, false
	}

	resolved, err := filepath.EvalSymlinks(device)
	if err != nil {
		resolved = device
	}

	sysPath, err := filepath.EvalSymlinks(filepath.Join(ms.sysBlock, filepath.Base(resolved)))
	if err != nil {
		return blockHints{}, false
	}
	if _, err := os.Stat(filepath.Join(sysPath, "partition")); err == nil {
		sysPath = filepath.Dir(sysPath)
	}

	return blockHints{
		removable:  readSysFlag(filepath.Join(sysPath, "removable")),
		usb:        strings.Contains(sysPath, "/usb"),
		rotational: readSysFlag(filepath.Join(sysPath, "queue", "rotational")),
	}, true
}

func (ms *MountInfoSource) readLabels() map[string]string {
	labels := make(map[string]string)

	entries, err := os.ReadDir(ms.byLabel)
	if err != nil {
		return labels
	}
	for _, entry := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(ms.byLabel, entry.Name()))
		if err != nil {
			continue
		}
		labels[target] = unescapeLabel(entry.Name())
	}
	return labels
}

func readSysFlag(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// parseMountInfo extracts mount point, filesystem type and mount source from
// mountinfo lines: "36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw".
func parseMountInfo(r io.Reader) ([]mount, error) {
	var mounts []mount

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		before, after, found := strings.Cut(scanner.Text(), " - ")
		if !found {
			continue
		}

		beforeFields := strings.Fields(before)
		afterFields := strings.Fields(after)
		if len(beforeFields) < 5 || len(afterFields) < 2 {
			continue
		}

		mounts = append(mounts, mount{
			mountPoint: unescapeMountField(beforeFields[4]),
			fsType:     afterFields[0],
			device:     unescapeMountField(afterFields[1]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

// unescapeMountField decodes the octal escapes (\040 for space) the kernel
// uses in mount paths.
func unescapeMountField(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}

	var b strings.Builder
	for i := 0; i < len(field); i++ {
		if field[i] == '\\' && i+4 <= len(field) && isOctal(field[i+1:i+4]) {
			b.WriteByte((field[i+1]-'0')<<6 | (field[i+2]-'0')<<3 | (field[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(field[i])
	}
	return b.String()
}

// unescapeLabel decodes the \xHH escapes udev uses in /dev/disk/by-label.
func unescapeLabel(label string) string {
	if !strings.Contains(label, `\x`) {
		return label
	}

	var b strings.Builder
	for i := 0; i < len(label); i++ {
		if label[i] == '\\' && i+4 <= len(label) && label[i+1] == 'x' {
			if v, err := strconv.ParseUint(label[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(label[i])
	}
	return b.String()
}

func isOctal(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}
