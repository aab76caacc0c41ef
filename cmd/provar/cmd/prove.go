package cmd

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	provar "github.com/provar-zk/provar"
	"github.com/provar-zk/provar/digest"
	"github.com/provar-zk/provar/internal/utils"
	"github.com/provar-zk/provar/prover"
	"github.com/provar-zk/provar/receipt"
	"github.com/provar-zk/provar/session"
)

// proveCmd proves a synthetic session. It exists to exercise and benchmark
// the proving pipeline end to end without an execution layer attached.
var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "proves a synthetic session and writes the receipt",
	RunE:  cmdProve,
}

var (
	fHashfn   string
	fDev      bool
	fSegments int
	fCycles   int
	fPO2      int
	fJournal  string
	fOut      string
)

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.Flags().StringVar(&fHashfn, "hashfn", prover.DefaultOpts().Hashfn,
		"hash suite to seal with, one of "+strings.Join(provar.HashSuites(), ", "))
	proveCmd.Flags().BoolVar(&fDev, "dev", false, "dev mode: skip proving, produce a fake receipt")
	proveCmd.Flags().IntVar(&fSegments, "segments", 2, "number of segments in the synthetic session")
	proveCmd.Flags().IntVar(&fCycles, "cycles", 512, "guest cycles per segment")
	proveCmd.Flags().IntVar(&fPO2, "po2", 0, "power-of-two cycle bound per segment; 0 fits the bound to --cycles")
	proveCmd.Flags().StringVar(&fJournal, "journal", "hello provar", "journal bytes the synthetic guest commits")
	proveCmd.Flags().StringVar(&fOut, "out", "session.receipt", "receipt output path")
}

func cmdProve(cmd *cobra.Command, args []string) error {
	if fCycles < 1 {
		return fmt.Errorf("need at least one cycle per segment, got %d", fCycles)
	}
	po2 := fPO2
	if po2 == 0 {
		po2 = utils.Max(1, utils.Log2Ceil(fCycles))
	}
	if fCycles > 1<<po2 {
		return fmt.Errorf("%d cycles do not fit a 2^%d bound; the next fitting bound is 2^%d",
			fCycles, po2, utils.Log2Ceil(utils.NextPowerOfTwo(fCycles)))
	}

	s, err := syntheticSession(fSegments, po2, fCycles, []byte(fJournal))
	if err != nil {
		return err
	}

	opts := prover.Opts{Hashfn: fHashfn, DevMode: fDev}
	start := time.Now()
	info, err := prover.Prove(opts, s)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	data, err := info.Receipt.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := os.WriteFile(fOut, data, 0600); err != nil {
		return err
	}

	claim, err := info.Receipt.Claim()
	if err != nil {
		return err
	}
	fmt.Printf("%-24s %s\n", "claim digest", claim.Digest())
	fmt.Printf("%-24s %d segments, %d/%d cycles\n", "proved", info.Stats.Segments, info.Stats.UserCycles, info.Stats.TotalCycles)
	fmt.Printf("%-24s %s (%d bytes) in %s\n", "receipt", fOut, len(data), duration)

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			fmt.Printf("%-24s %d MiB RSS\n", "peak memory", mi.RSS/(1<<20))
		}
	}
	return nil
}

// syntheticSession fabricates a provable session: nbSegments chained
// segments over deterministic memory images and traces, ending halted with
// the given journal.
func syntheticSession(nbSegments, po2, cycles int, journal []byte) (*session.Session, error) {
	if nbSegments < 1 {
		return nil, fmt.Errorf("need at least one segment, got %d", nbSegments)
	}
	images := make([]*session.MemoryImage, nbSegments+1)
	for i := range images {
		img := session.NewMemoryImage(uint32(0x1000 + 4*i))
		page := make([]byte, session.PageSize)
		binary.LittleEndian.PutUint32(page, uint32(i+1))
		if err := img.AddPage(0, page); err != nil {
			return nil, err
		}
		images[i] = img
	}

	exit := func(i int) receipt.ExitCode {
		if i == nbSegments-1 {
			return receipt.ExitCode{Kind: receipt.Halted}
		}
		return receipt.ExitCode{Kind: receipt.SystemSplit}
	}

	s := &session.Session{
		Journal:  journal,
		ExitCode: receipt.ExitCode{Kind: receipt.Halted},
	}
	for i := 0; i < nbSegments; i++ {
		trace := make([]session.TraceRow, cycles)
		for c := range trace {
			trace[c] = session.TraceRow{
				Cycle: uint32(c),
				PC:    images[i].PC + uint32(4*c),
				Insn:  uint32(i)<<16 | uint32(c),
			}
		}
		seg := &session.Segment{
			Index:    i,
			PO2:      po2,
			Cycles:   cycles,
			PreImage: images[i],
			Post:     receipt.SystemState{PC: images[i+1].PC, MerkleRoot: images[i+1].Root()},
			ExitCode: exit(i),
			Trace:    trace,
		}
		if i == nbSegments-1 {
			seg.Output = &receipt.Output{JournalDigest: digest.Sum(journal)}
		}
		s.Segments = append(s.Segments, session.NewSimpleSegmentRef(seg))
	}
	return s, nil
}
