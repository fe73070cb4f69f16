package collision_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/collision"
	"github.com/san-kum/physanim/internal/dynamo"
)

func headOn(m1, m2 float64) (*dynamo.Body, *dynamo.Body) {
	a := &dynamo.Body{Pos: dynamo.V(100, 100), Vel: dynamo.V(80, 0), Mass: m1, Radius: 10}
	b := &dynamo.Body{Pos: dynamo.V(118, 100), Vel: dynamo.V(-80, 0), Mass: m2, Radius: 10}
	return a, b
}

var _ = Describe("ResolvePair", func() {
	const tol = 1e-9

	It("exchanges velocities for equal masses with e=1", func() {
		a, b := headOn(1, 1)

		Expect(collision.ResolvePair(a, b, 1)).To(BeTrue())
		Expect(a.Vel.X).To(BeNumerically("~", -80, tol))
		Expect(b.Vel.X).To(BeNumerically("~", 80, tol))
		Expect(a.Vel.Y).To(BeNumerically("~", 0, tol))
		Expect(b.Vel.Y).To(BeNumerically("~", 0, tol))
	})

	DescribeTable("conserves momentum in the elastic case",
		func(m1, m2 float64, v1, v2 dynamo.Vec) {
			a := &dynamo.Body{Pos: dynamo.V(0, 0), Vel: v1, Mass: m1, Radius: 5}
			b := &dynamo.Body{Pos: dynamo.V(6, 3), Vel: v2, Mass: m2, Radius: 5}
			before := r2.Add(a.Momentum(), b.Momentum())

			collision.ResolvePair(a, b, 1)

			after := r2.Add(a.Momentum(), b.Momentum())
			Expect(after.X).To(BeNumerically("~", before.X, tol))
			Expect(after.Y).To(BeNumerically("~", before.Y, tol))
		},
		Entry("equal masses", 1.0, 1.0, dynamo.V(10, 0), dynamo.V(-10, 0)),
		Entry("heavy and light", 10.0, 1.0, dynamo.V(3, 1), dynamo.V(-20, 4)),
		Entry("glancing", 2.0, 3.0, dynamo.V(5, 5), dynamo.V(0, -7)),
	)

	It("preserves kinetic energy when e=1", func() {
		a, b := headOn(3, 1)
		before := a.KineticEnergy() + b.KineticEnergy()

		collision.ResolvePair(a, b, 1)

		Expect(a.KineticEnergy() + b.KineticEnergy()).To(BeNumerically("~", before, 1e-6))
	})

	DescribeTable("dissipates kinetic energy when e<1",
		func(e float64) {
			a, b := headOn(2, 1)
			before := a.KineticEnergy() + b.KineticEnergy()

			Expect(collision.ResolvePair(a, b, e)).To(BeTrue())

			Expect(a.KineticEnergy() + b.KineticEnergy()).To(BeNumerically("<", before))
		},
		Entry("e=0.9", 0.9),
		Entry("e=0.3", 0.3),
		Entry("perfectly inelastic", 0.0),
	)

	It("leaves the pair non-overlapping", func() {
		a, b := headOn(1, 4)

		collision.ResolvePair(a, b, 0.5)

		Expect(r2.Norm(r2.Sub(b.Pos, a.Pos))).To(BeNumerically(">=", a.Radius+b.Radius-1e-9))
	})

	It("separates but does not push bodies already moving apart", func() {
		a := &dynamo.Body{Pos: dynamo.V(0, 0), Vel: dynamo.V(-5, 0), Mass: 1, Radius: 10}
		b := &dynamo.Body{Pos: dynamo.V(15, 0), Vel: dynamo.V(5, 0), Mass: 1, Radius: 10}

		Expect(collision.ResolvePair(a, b, 1)).To(BeFalse())
		Expect(a.Vel.X).To(Equal(-5.0))
		Expect(b.Vel.X).To(Equal(5.0))
		Expect(r2.Norm(r2.Sub(b.Pos, a.Pos))).To(BeNumerically("~", 20, tol))
	})

	It("ignores bodies that do not touch", func() {
		a := &dynamo.Body{Pos: dynamo.V(0, 0), Vel: dynamo.V(5, 0), Mass: 1, Radius: 1}
		b := &dynamo.Body{Pos: dynamo.V(50, 0), Vel: dynamo.V(-5, 0), Mass: 1, Radius: 1}

		Expect(collision.ResolvePair(a, b, 1)).To(BeFalse())
		Expect(a.Vel.X).To(Equal(5.0))
	})

	It("treats zero-mass bodies as immovable", func() {
		wall := &dynamo.Body{Pos: dynamo.V(10, 0), Mass: 0, Radius: 5}
		ball := &dynamo.Body{Pos: dynamo.V(2, 0), Vel: dynamo.V(10, 0), Mass: 1, Radius: 5}

		Expect(collision.ResolvePair(ball, wall, 1)).To(BeTrue())
		Expect(ball.Vel.X).To(BeNumerically("~", -10, tol))
		Expect(wall.Pos.X).To(Equal(10.0))
		Expect(wall.Pos.X - ball.Pos.X).To(BeNumerically("~", 10, tol))
	})

	It("picks an arbitrary normal for coincident centres", func() {
		a := &dynamo.Body{Pos: dynamo.V(5, 5), Mass: 1, Radius: 2}
		b := &dynamo.Body{Pos: dynamo.V(5, 5), Mass: 1, Radius: 2}

		collision.ResolvePair(a, b, 1)

		Expect(a.IsValid()).To(BeTrue())
		Expect(r2.Norm(r2.Sub(b.Pos, a.Pos))).To(BeNumerically("~", 4, tol))
	})
})

var _ = Describe("ResolvePoints", func() {
	It("uses the fixed threshold instead of radii", func() {
		a := &dynamo.Body{Pos: dynamo.V(0, 0), Vel: dynamo.V(1, 0), Mass: 1}
		b := &dynamo.Body{Pos: dynamo.V(3, 0), Vel: dynamo.V(-1, 0), Mass: 1}

		Expect(collision.ResolvePoints(a, b, 2, 1)).To(BeFalse())
		Expect(collision.ResolvePoints(a, b, 4, 1)).To(BeTrue())
		Expect(a.Vel.X).To(BeNumerically("~", -1, 1e-9))
	})
})

var _ = Describe("Resolver", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(7))
	})

	It("forces the inelastic coefficient regardless of the configured one", func() {
		r := collision.NewResolver(collision.Inelastic, 1.0, rng)
		Expect(r.Effective()).To(Equal(collision.DefaultInelasticRestitution))

		r.InelasticRestitution = 0.5
		Expect(r.Effective()).To(Equal(0.5))
	})

	It("draws mixed coefficients inside the configured range", func() {
		r := collision.NewResolver(collision.Mixed, 1.0, rng)
		for i := 0; i < 100; i++ {
			e := r.Effective()
			Expect(e).To(BeNumerically(">=", collision.DefaultMixedMin))
			Expect(e).To(BeNumerically("<=", collision.DefaultMixedMax))
		}
	})

	It("is reproducible for a fixed seed", func() {
		ra := collision.NewResolver(collision.Mixed, 1, rand.New(rand.NewSource(3)))
		rb := collision.NewResolver(collision.Mixed, 1, rand.New(rand.NewSource(3)))
		for i := 0; i < 10; i++ {
			Expect(ra.Effective()).To(Equal(rb.Effective()))
		}
	})

	It("resolves every touching pair and conserves momentum", func() {
		bodies := []dynamo.Body{
			{Pos: dynamo.V(0, 0), Vel: dynamo.V(5, 0), Mass: 1, Radius: 5},
			{Pos: dynamo.V(8, 0), Vel: dynamo.V(-5, 0), Mass: 2, Radius: 5},
			{Pos: dynamo.V(100, 100), Vel: dynamo.V(0, 0), Mass: 1, Radius: 5},
			{Pos: dynamo.V(100, 108), Vel: dynamo.V(0, -3), Mass: 1, Radius: 5},
		}
		before := collision.TotalMomentum(bodies)

		hits := 0
		n := collision.NewResolver(collision.Elastic, 1, rng).ResolveAllFunc(bodies, func(i, j int) { hits++ })

		Expect(n).To(Equal(2))
		Expect(hits).To(Equal(2))
		after := collision.TotalMomentum(bodies)
		Expect(after.X).To(BeNumerically("~", before.X, 1e-9))
		Expect(after.Y).To(BeNumerically("~", before.Y, 1e-9))
	})

	It("never increases energy in mixed mode", func() {
		bodies := make([]dynamo.Body, 30)
		for i := range bodies {
			bodies[i] = dynamo.Body{
				Pos:    dynamo.V(rng.Float64()*60, rng.Float64()*60),
				Vel:    dynamo.V(rng.NormFloat64()*10, rng.NormFloat64()*10),
				Mass:   1 + rng.Float64(),
				Radius: 4,
			}
		}
		before := collision.TotalKineticEnergy(bodies)

		collision.NewResolver(collision.Mixed, 1, rng).ResolveAll(bodies)

		Expect(collision.TotalKineticEnergy(bodies)).To(BeNumerically("<=", before+1e-9))
		for i := range bodies {
			Expect(math.IsNaN(bodies[i].Vel.X)).To(BeFalse())
		}
	})
})
