package robot_test

import (
	"math"
	"math/rand"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/integrators"
	"github.com/san-kum/robonav/internal/robot"
)

// tickUntilArrived ticks r until it stops moving or maxTicks is reached and
// returns the distances to target observed before each tick.
func tickUntilArrived(r dynamo.Robot, maxTicks int) []float64 {
	distances := make([]float64, 0, maxTicks)
	for i := 0; i < maxTicks; i++ {
		distances = append(distances, r.Pose().DistanceTo(r.Target()))
		if !r.Tick() {
			break
		}
	}
	return distances
}

var _ = Describe("Robot", func() {
	var registry *robot.Registry

	BeforeEach(func() {
		registry = robot.NewRegistry()
	})

	Describe("driving to a target ahead", func() {
		var r *robot.Robot

		BeforeEach(func() {
			var err error
			r, err = registry.New("standard",
				robot.WithPose(dynamo.Pose{X: 100, Y: 100, Heading: 0}),
				robot.WithTarget(dynamo.Target{X: 150, Y: 100}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("approaches monotonically and stops within epsilon", func() {
			distances := tickUntilArrived(r, 500)

			Expect(len(distances)).To(BeNumerically("<", 500))
			for i := 1; i < len(distances); i++ {
				Expect(distances[i]).To(BeNumerically("<", distances[i-1]), "tick %d", i)
			}
			Expect(r.Pose().DistanceTo(r.Target())).To(BeNumerically("<", dynamo.ArrivalEpsilon))
		})

		It("ends up heading rightward", func() {
			tickUntilArrived(r, 500)

			heading := r.Heading()
			offset := math.Min(heading, 2*math.Pi-heading)
			Expect(offset).To(BeNumerically("<", 0.1))
		})

		It("holds position once arrived", func() {
			tickUntilArrived(r, 500)
			arrived := r.Pose()

			for i := 0; i < 20; i++ {
				Expect(r.Tick()).To(BeFalse())
			}
			Expect(r.Pose()).To(Equal(arrived))
		})

		It("resumes when the target moves away", func() {
			tickUntilArrived(r, 500)
			r.SetTarget(200, 100)

			Expect(r.Tick()).To(BeTrue())
			Expect(r.Command().Velocity).To(Equal(0.1))
		})
	})

	Describe("a target behind the robot", func() {
		It("turns for the first ticks before closing in", func() {
			r, err := registry.New("standard",
				robot.WithPose(dynamo.Pose{X: 100, Y: 100, Heading: 0}),
				robot.WithTarget(dynamo.Target{X: 50, Y: 100}))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 10; i++ {
				Expect(r.Tick()).To(BeTrue())
				Expect(r.Command().AngularVelocity).NotTo(BeZero(), "tick %d", i)
			}

			tickUntilArrived(r, 5000)
			Expect(dynamo.Arrived(r.Pose(), r.Target())).To(BeTrue())
		})
	})

	DescribeTable("converges for both variants",
		func(variant string, target dynamo.Target) {
			r, err := registry.New(variant, robot.WithTarget(target))
			Expect(err).NotTo(HaveOccurred())

			tickUntilArrived(r, 5000)
			Expect(dynamo.Arrived(r.Pose(), r.Target())).To(BeTrue(), "pose %v", r.Pose())
		},
		Entry("standard far diagonal", "standard", dynamo.Target{X: 300, Y: 250}),
		Entry("standard behind and below", "standard", dynamo.Target{X: 20, Y: 30}),
		Entry("standard close abeam", "standard", dynamo.Target{X: 100, Y: 101}),
		Entry("nimble ahead", "nimble", dynamo.Target{X: 150, Y: 100}),
		Entry("nimble behind", "nimble", dynamo.Target{X: 50, Y: 100}),
		Entry("nimble close abeam", "nimble", dynamo.Target{X: 100, Y: 101}),
	)

	It("keeps heading within [0, 2π) for arbitrary targets", func() {
		rng := rand.New(rand.NewSource(7))
		r, err := registry.New("nimble")
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 2000; i++ {
			if i%50 == 0 {
				r.SetTarget(rng.Intn(600)-300, rng.Intn(600)-300)
			}
			r.Tick()
			Expect(r.Heading()).To(And(BeNumerically(">=", 0), BeNumerically("<", 2*math.Pi)))
		}
	})

	It("uses the configured integrator and duration", func() {
		limits := dynamo.Limits{MaxVelocity: 0.1, MaxAngularVelocity: 0.003}
		r, err := registry.New("standard",
			robot.WithTarget(dynamo.Target{X: 1000, Y: 100}),
			robot.WithDuration(5),
			robot.WithIntegrator(integrators.NewEuler(limits)))
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Tick()).To(BeTrue())
		Expect(r.PositionX()).To(BeNumerically("~", 100.5, 1e-9))
		Expect(r.PositionY()).To(BeNumerically("~", 100, 1e-9))
	})

	Describe("concurrent access", func() {
		It("never exposes a torn target or pose", func() {
			r, err := registry.New("standard", robot.WithTarget(dynamo.Target{X: 0, Y: 1}))
			Expect(err).NotTo(HaveOccurred())

			const writes = 2000
			var wg sync.WaitGroup
			wg.Add(3)

			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < writes; i++ {
					r.SetTarget(i, 2*i+1)
				}
			}()

			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < writes; i++ {
					r.Tick()
					t := r.Target()
					Expect(t.Y).To(Equal(2*t.X + 1))
				}
			}()

			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < writes; i++ {
					p := r.Pose()
					Expect(p.Heading).To(And(BeNumerically(">=", 0), BeNumerically("<", 2*math.Pi)))
					Expect(math.IsNaN(p.X) || math.IsNaN(p.Y)).To(BeFalse())
				}
			}()

			wg.Wait()
		})
	})
})

var _ = Describe("Registry", func() {
	It("lists the built-in variants in order", func() {
		Expect(robot.NewRegistry().List()).To(Equal([]string{"nimble", "standard"}))
	})

	It("rejects unknown variants", func() {
		_, err := robot.NewRegistry().New("jar")
		Expect(err).To(MatchError(dynamo.ErrUnknownVariant))
	})

	It("cycles through variants", func() {
		reg := robot.NewRegistry()
		Expect(reg.Next("nimble")).To(Equal("standard"))
		Expect(reg.Next("standard")).To(Equal("nimble"))
		Expect(reg.Next("missing")).To(Equal("nimble"))
	})

	It("validates registered limits", func() {
		reg := robot.NewRegistry()
		err := reg.Register("broken", robot.Variant{Limits: dynamo.Limits{MaxVelocity: 1}})
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

		Expect(reg.Register("racer", robot.Variant{Limits: dynamo.Limits{MaxVelocity: 1, MaxAngularVelocity: 0.2}})).To(Succeed())
		r, err := reg.New("racer")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name()).To(Equal("racer"))
		Expect(r.Limits().TurningRadius()).To(BeNumerically("~", 5, 1e-9))
	})

	It("shares one default registry", func() {
		Expect(robot.DefaultRegistry()).To(BeIdenticalTo(robot.DefaultRegistry()))
	})
})
