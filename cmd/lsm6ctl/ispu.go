package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/westphae/lsm6dso16is"
)

var ispuCmd = &cobra.Command{
	Use:   "ispu",
	Short: "manage the on-chip ISPU core",
}

var ispuLoadCmd = &cobra.Command{
	Use:   "load <program.bin>",
	Short: "load a program image into ISPU program RAM and boot it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		prog, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var data []byte
		if dataFile, _ := cmd.Flags().GetString("data"); dataFile != "" {
			if data, err = os.ReadFile(dataFile); err != nil {
				return err
			}
		}

		dev, b, err := openDevice(opt)
		if err != nil {
			return err
		}
		defer b.Close()

		// Hold the core in reset while the memories are rewritten.
		if err := dev.SetIspuReset(true); err != nil {
			return err
		}
		log.Infof("loading %d program bytes", len(prog))
		if err := dev.IspuWriteMemory(lsm6dso16is.IspuProgramRam, 0, prog); err != nil {
			return err
		}
		if len(data) > 0 {
			log.Infof("loading %d data bytes", len(data))
			if err := dev.IspuWriteMemory(lsm6dso16is.IspuDataRam, 0, data); err != nil {
				return err
			}
		}
		if err := dev.SetIspuReset(false); err != nil {
			return err
		}
		if err := dev.SetIspuBoot(true); err != nil {
			return err
		}

		for i := 0; i < 100; i++ {
			st, err := dev.IspuBootStatus()
			if err != nil {
				return err
			}
			if st == lsm6dso16is.IspuBootEnded {
				fmt.Println("ISPU booted")
				return nil
			}
			time.Sleep(5 * time.Millisecond)
		}
		return fmt.Errorf("ISPU did not finish booting")
	},
}

var ispuStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "print ISPU boot state, flags and interrupt status",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		dev, b, err := openDevice(opt)
		if err != nil {
			return err
		}
		defer b.Close()

		boot, err := dev.IspuBootStatus()
		if err != nil {
			return err
		}
		flags, err := dev.IspuReadFlags()
		if err != nil {
			return err
		}
		ints, err := dev.IspuIntStatusMainPage()
		if err != nil {
			return err
		}
		algo, err := dev.IspuAlgo()
		if err != nil {
			return err
		}
		fmt.Printf("boot:       %v\n", boot == lsm6dso16is.IspuBootEnded)
		fmt.Printf("s2if flags: %#04x\n", flags)
		fmt.Printf("interrupts: %#08x\n", ints)
		fmt.Printf("algorithms: %#08x\n", algo)
		return nil
	},
}

func init() {
	ispuLoadCmd.Flags().String("data", "", "data RAM image to load alongside the program")
	ispuCmd.AddCommand(ispuLoadCmd)
	ispuCmd.AddCommand(ispuStatusCmd)
}
