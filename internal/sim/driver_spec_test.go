package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mbsim/internal/compute"
	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
)

var _ = Describe("Driver", func() {
	var (
		cfg sim.Config
		dev *compute.CPUDevice
	)

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
		cfg.N = 256
		cfg.Speed = 2
		cfg.Dt = 1e-3
		cfg.Ticks = 8
		dev = compute.NewCPUDevice(4)
	})

	It("hands presenters every tick in order", func() {
		var ticks []int
		d := sim.New(cfg, dev)
		d.AddPresenter(sim.PresenterFunc(func(_ context.Context, f particle.Frame) error {
			ticks = append(ticks, f.Tick)
			Expect(d.Phase()).To(Equal(sim.Running))
			return nil
		}))

		_, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7}))
	})

	It("reports the mean square speed of the frame", func() {
		d := sim.New(cfg, dev)
		d.AddPresenter(sim.PresenterFunc(func(_ context.Context, f particle.Frame) error {
			Expect(f.N).To(Equal(256))
			Expect(f.Positions).To(HaveLen(512))
			Expect(f.MeanSq).To(BeNumerically("~", f.SumSq/256, 1e-12))
			return nil
		}))

		result, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Ticks[0].MeanSq).To(BeNumerically("~", 4, 1e-9))
	})

	It("keeps every particle inside the box over many ticks", func() {
		cfg.Ticks = 200
		cfg.Dt = 0.002
		cfg.Speed = 1
		d := sim.New(cfg, dev)

		result, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		for _, p := range result.Final.Pos {
			Expect(p).To(BeNumerically(">", -0.01))
			Expect(p).To(BeNumerically("<", 1.01))
		}
	})

	Context("when a frame is cloned", func() {
		It("survives the next tick", func() {
			var kept particle.Frame
			d := sim.New(cfg, dev)
			d.AddPresenter(sim.PresenterFunc(func(_ context.Context, f particle.Frame) error {
				if f.Tick == 0 {
					kept = f.Clone()
				}
				return nil
			}))

			result, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Tick).To(Equal(0))
			Expect(kept.Positions).NotTo(Equal(result.Final.Pos))
		})
	})

	Context("with a dense scatter layout", func() {
		BeforeEach(func() {
			cfg.Layout = particle.LayoutScatter
			cfg.N = 500
			cfg.Radius = 0.02
		})

		It("resolves collisions while conserving the sum of squares", func() {
			d := sim.New(cfg, dev)
			result, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			total := 0
			for _, st := range result.Ticks {
				total += st.Collisions
			}
			Expect(total).To(BeNumerically(">", 0))
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-9))
		})
	})
})
