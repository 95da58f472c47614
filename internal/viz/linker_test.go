package viz

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fastscape-lem/topoviz/internal/dataset"
)

var _ = Describe("AppLinker", func() {
	var app1, app2 *VizApp

	newApp := func() *VizApp {
		ds, err := buildFixture()
		Expect(err).NotTo(HaveOccurred())
		app := NewVizApp()
		Expect(app.Load(ds, dataset.WithTimeDim("time"))).To(Succeed())
		return app
	}

	BeforeEach(func() {
		app1 = newApp()
		app2 = newApp()
	})

	Describe("construction", func() {
		It("rejects fewer than two apps", func() {
			_, err := NewAppLinker(app1)
			Expect(err).To(MatchError(ContainSubstring("at least two")))
		})

		It("rejects duplicate apps", func() {
			_, err := NewAppLinker(app1, app1)
			Expect(err).To(MatchError(ContainSubstring("distinct")))
		})

		It("rejects nil apps", func() {
			_, err := NewAppLinker(app1, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("when enabled", func() {
		var linker *AppLinker

		BeforeEach(func() {
			var err error
			linker, err = NewAppLinker(app1, app2)
			Expect(err).NotTo(HaveOccurred())
			Expect(linker.Enable()).To(Succeed())
		})

		It("mirrors timestepper moves across apps", func() {
			app1.TimeStepper().Slider.SetValue(2)
			Expect(app2.TimeStepper().Slider.Value.Get()).To(Equal(2))
			Expect(app2.Explorer().Step()).To(Equal(2))
		})

		It("mirrors moves initiated from the second app", func() {
			app2.TimeStepper().Slider.SetValue(1)
			Expect(app1.TimeStepper().Slider.Value.Get()).To(Equal(1))
		})

		It("mirrors dimension slider moves", func() {
			app1.Dimensions().Sliders["batch"].SetValue(1)
			Expect(app2.Dimensions().Sliders["batch"].Value.Get()).To(Equal(1))
			Expect(app2.Explorer().ExtraDims()["batch"]).To(Equal(1))
		})

		It("propagates each change exactly once", func() {
			fires := 0
			app2.TimeStepper().Slider.Value.ObserveAny(func() { fires++ })
			app1.TimeStepper().Slider.SetValue(1)
			Expect(fires).To(Equal(1))
		})

		It("is idempotent", func() {
			Expect(linker.Enable()).To(Succeed())
			app1.TimeStepper().Slider.SetValue(1)
			Expect(app2.TimeStepper().Slider.Value.Get()).To(Equal(1))
		})
	})

	Describe("when disabled again", func() {
		It("lets apps move independently", func() {
			linker, err := NewAppLinker(app1, app2)
			Expect(err).NotTo(HaveOccurred())
			Expect(linker.Enable()).To(Succeed())

			app1.TimeStepper().Slider.SetValue(2)
			linker.Disable()

			app1.TimeStepper().Slider.SetValue(0)
			Expect(app2.TimeStepper().Slider.Value.Get()).To(Equal(2))

			app1.Dimensions().Sliders["batch"].SetValue(1)
			Expect(app2.Dimensions().Sliders["batch"].Value.Get()).To(Equal(0))
		})
	})

	Describe("shared traits", func() {
		It("exposes hub traits keyed by component and trait name", func() {
			linker, err := NewAppLinker(app1, app2)
			Expect(err).NotTo(HaveOccurred())

			shared := linker.SharedTraits()
			Expect(shared).To(HaveKey("timestepper/slider"))
			Expect(shared).To(HaveKey("dimensions/batch"))
		})

		It("matches the traits a lone app shares", func() {
			linker, err := NewAppLinker(app1, app2)
			Expect(err).NotTo(HaveOccurred())

			solo := app1.SharedTraits()
			Expect(solo).To(HaveLen(len(linker.SharedTraits())))
			Expect(solo["timestepper/slider"].Trait).To(
				BeIdenticalTo(linker.SharedTraits()["timestepper/slider"].Trait))
		})
	})
})
