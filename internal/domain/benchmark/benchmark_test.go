package benchmark_test

import (
	"errors"
	"testing"

	"github.com/okian/hubboard/internal/domain/benchmark"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw dataset and metric names", t, func() {
		So(benchmark.Normalize("ARC-Challenge (25-shot)"), ShouldEqual, "arc challenge 25 shot")
		So(benchmark.Normalize("  MMLU__Pro "), ShouldEqual, "mmlu pro")
		So(benchmark.Normalize("---"), ShouldEqual, "")
		So(benchmark.Normalize(""), ShouldEqual, "")
	})
}

func TestCatalogMatch(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := benchmark.Default()

		Convey("Then it keeps insertion order", func() {
			So(c.Keys(), ShouldResemble, []string{"mmlu", "bigcodebench", "arc_mc"})
			So(c.Len(), ShouldEqual, 3)
		})

		Convey("When a field contains exactly one alias", func() {
			def, ok := c.Match("", "cais/mmlu", "accuracy")

			Convey("Then that benchmark is returned", func() {
				So(ok, ShouldBeTrue)
				So(def.Key, ShouldEqual, "mmlu")
				So(def.Label, ShouldEqual, "MMLU")
			})
		})

		Convey("When the alias only appears after normalization", func() {
			def, ok := c.Match("AI2 Reasoning Challenge", "ARC_Challenge")

			So(ok, ShouldBeTrue)
			So(def.Key, ShouldEqual, "arc_mc")
		})

		Convey("When no field matches any alias", func() {
			_, ok := c.Match("hellaswag", "acc_norm")

			So(ok, ShouldBeFalse)
		})

		Convey("When every field is empty", func() {
			_, ok := c.Match("", "  ", "")

			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a catalog where two defs could match", t, func() {
		c, err := benchmark.NewCatalog(
			benchmark.Definition{Key: "first", Label: "First", Aliases: []string{"bench"}},
			benchmark.Definition{Key: "second", Label: "Second", Aliases: []string{"bench pro"}},
		)
		So(err, ShouldBeNil)

		Convey("Then the earlier def wins", func() {
			def, ok := c.Match("bench pro")
			So(ok, ShouldBeTrue)
			So(def.Key, ShouldEqual, "first")
		})
	})

	Convey("Given a disjoint catalog", t, func() {
		c, err := benchmark.NewCatalog(
			benchmark.Definition{Key: "gsm8k", Aliases: []string{"gsm8k"}},
			benchmark.Definition{Key: "humaneval", Aliases: []string{"humaneval", "human eval"}},
		)
		So(err, ShouldBeNil)

		Convey("Then each alias selects its own key", func() {
			def, ok := c.Match("openai/human-eval")
			So(ok, ShouldBeTrue)
			So(def.Key, ShouldEqual, "humaneval")
			So(def.Label, ShouldEqual, "humaneval")

			def, ok = c.Match("GSM8K")
			So(ok, ShouldBeTrue)
			So(def.Key, ShouldEqual, "gsm8k")
		})
	})
}

func TestNewCatalogValidation(t *testing.T) {
	Convey("Given invalid catalog definitions", t, func() {
		Convey("When keys repeat", func() {
			_, err := benchmark.NewCatalog(
				benchmark.Definition{Key: "mmlu", Aliases: []string{"mmlu"}},
				benchmark.Definition{Key: "mmlu", Aliases: []string{"mmlu pro"}},
			)
			So(errors.Is(err, benchmark.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When a def has only unusable aliases", func() {
			_, err := benchmark.NewCatalog(benchmark.Definition{Key: "x", Aliases: []string{"--", ""}})
			So(errors.Is(err, benchmark.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When the catalog is empty", func() {
			_, err := benchmark.NewCatalog()
			So(errors.Is(err, benchmark.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When a key is blank", func() {
			_, err := benchmark.NewCatalog(benchmark.Definition{Key: " ", Aliases: []string{"a"}})
			So(errors.Is(err, benchmark.ErrInvalidCatalog), ShouldBeTrue)
		})
	})

	Convey("Given a built catalog", t, func() {
		defs := benchmark.DefaultDefinitions()
		c, err := benchmark.NewCatalog(defs...)
		So(err, ShouldBeNil)

		Convey("When the caller mutates its input and a returned def", func() {
			defs[0].Aliases[0] = "changed"
			got, ok := c.Lookup("mmlu")
			So(ok, ShouldBeTrue)
			got.Aliases[0] = "changed too"

			Convey("Then the catalog is unaffected", func() {
				again, _ := c.Lookup("mmlu")
				So(again.Aliases[0], ShouldEqual, "mmlu")
				_, ok := c.Match("massive multitask language understanding")
				So(ok, ShouldBeTrue)
			})
		})
	})
}
