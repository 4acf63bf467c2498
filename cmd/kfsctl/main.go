// Command kfsctl manages KFS image files from the command line:
// formatting a fresh image, printing superblock stats, and reading or
// writing one of the four fixed files directly.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/kfarr3/kfs"
	"github.com/kfarr3/kfs/fs"
	"github.com/kfarr3/kfs/port"
)

func main() {
	app := cli.App{
		Usage: "Manage KFS image files",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create or wipe a KFS image",
				Action:    formatImage,
				ArgsUsage: "IMAGE_FILE SECTOR_COUNT",
			},
			{
				Name:      "stat",
				Usage:     "Print superblock and per-file stats",
				Action:    statImage,
				ArgsUsage: "IMAGE_FILE",
			},
			{
				Name:      "read",
				Usage:     "Read bytes from one of the fixed files",
				Action:    readFile,
				ArgsUsage: "IMAGE_FILE FIRMWARE|CONFIG|EVENT|LOG LENGTH",
			},
			{
				Name:      "write",
				Usage:     "Write stdin to one of the fixed files",
				Action:    writeFile,
				ArgsUsage: "IMAGE_FILE FIRMWARE|CONFIG|EVENT|LOG",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "truncate", Usage: "reset the file before writing"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("kfsctl: %s", err.Error())
	}
}

func roleFromName(name string) (kfs.FileRole, error) {
	switch name {
	case "FIRMWARE", "firmware":
		return kfs.Firmware, nil
	case "CONFIG", "config":
		return kfs.Config, nil
	case "EVENT", "event":
		return kfs.Event, nil
	case "LOG", "log":
		return kfs.Log, nil
	default:
		return 0, fmt.Errorf("unknown file role %q", name)
	}
}

func openExisting(path string) (*fs.FileSystem, *port.FileDevice, error) {
	device, err := port.OpenFileDevice(path, kfs.DefaultSectorSize)
	if err != nil {
		return nil, nil, err
	}
	f := fs.New(device)
	if state := f.Init(); state != kfs.StateSuccess {
		device.Close()
		return nil, nil, fmt.Errorf("mount failed: %s", f.StrError(state))
	}
	return f, device, nil
}

func formatImage(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: kfsctl format IMAGE_FILE SECTOR_COUNT")
	}
	path := c.Args().Get(0)
	sectorCount, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sector count: %w", err)
	}

	device, err := port.CreateFileDevice(path, kfs.DefaultSectorSize, sectorCount)
	if err != nil {
		return err
	}
	defer device.Close()

	f := fs.New(device)
	if state := f.Format(); state != kfs.StateSuccess {
		return fmt.Errorf("format failed: %s", f.StrError(state))
	}
	fmt.Printf("formatted %s with %d sectors\n", path, sectorCount)
	return nil
}

func statImage(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: kfsctl stat IMAGE_FILE")
	}
	f, device, err := openExisting(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer device.Close()

	return f.PrintStats(os.Stdout)
}

func readFile(c *cli.Context) error {
	if c.Args().Len() < 3 {
		return fmt.Errorf("usage: kfsctl read IMAGE_FILE ROLE LENGTH")
	}
	role, err := roleFromName(c.Args().Get(1))
	if err != nil {
		return err
	}
	length, err := strconv.Atoi(c.Args().Get(2))
	if err != nil || length < 0 {
		return fmt.Errorf("invalid length: %q", c.Args().Get(2))
	}

	f, device, err := openExisting(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer device.Close()

	if state := f.Open(role, 0); state != kfs.StateSuccess {
		return fmt.Errorf("open failed: %s", f.StrError(state))
	}

	buf := make([]byte, length)
	n, state := f.Read(role, buf)
	if state != kfs.StateSuccess {
		return fmt.Errorf("read failed: %s", f.StrError(state))
	}
	_, err = os.Stdout.Write(buf[:n])
	return err
}

func writeFile(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: kfsctl write IMAGE_FILE ROLE")
	}
	role, err := roleFromName(c.Args().Get(1))
	if err != nil {
		return err
	}

	f, device, err := openExisting(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer device.Close()

	var flags kfs.OpenFlag
	if c.Bool("truncate") {
		flags = kfs.Truncate
	}
	if state := f.Open(role, flags); state != kfs.StateSuccess {
		return fmt.Errorf("open failed: %s", f.StrError(state))
	}

	data, err := readAllStdin()
	if err != nil {
		return err
	}

	n, state := f.Write(role, data)
	if state != kfs.StateSuccess {
		return fmt.Errorf("write failed: %s", f.StrError(state))
	}
	fmt.Printf("wrote %d bytes\n", n)
	return nil
}

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}
