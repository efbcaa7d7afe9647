package rule

import (
	"testing"
	"time"

	"github.com/grum999/bulicore/pkg/descriptor"
)

func fileDesc(name string, format descriptor.FormatTag, size int64, w, h int, modTime time.Time) descriptor.Descriptor {
	return descriptor.Descriptor{
		FullPath: "/d/" + name,
		Dir:      "/d",
		Name:     name,
		ModTime:  modTime,
		Format:   format,
		Readable: true,
		ByteSize: size,
		Image:    descriptor.ImageSize{Width: w, Height: h},
	}
}

func TestScenario1FormatAndWidthRule(t *testing.T) {
	tree := And(
		Leaf(Predicate{
			Property: descriptor.FILE_FORMAT,
			Type:     TypeEnum,
			Operator: OpIN,
			Operand1: []interface{}{"PNG", "KRA"},
		}),
		Leaf(Predicate{
			Property: descriptor.IMAGE_WIDTH,
			Type:     TypeInt,
			Operator: OpGE,
			Operand1: 1000,
		}),
	)
	compiled, err := Compile(tree)
	if err != nil {
		t.Fatal(err)
	}

	a := fileDesc("a.png", descriptor.RASTER_PNG, 12*1024, 512, 384, time.Now())
	b := fileDesc("b.kra", descriptor.KRA, 4<<20, 1920, 1080, time.Now())
	c := fileDesc("c.txt", descriptor.UNKNOWN, 1024, -1, -1, time.Now())

	if compiled.Eval(a) {
		t.Fatal("a.png should fail the width>=1000 predicate")
	}
	if !compiled.Eval(b) {
		t.Fatal("b.kra should match format+width rule")
	}
	if compiled.Eval(c) {
		t.Fatal("c.txt should fail the format predicate")
	}
}

func TestEmptyTreeMatchesEverything(t *testing.T) {
	compiled, err := Compile(Node{})
	if err != nil {
		t.Fatal(err)
	}
	d := descriptor.NewDirectory("/d/sub", time.Now())
	if !compiled.Eval(d) {
		t.Fatal("empty rule tree should match directories too")
	}
}

func TestDirectoryPassesUndefinedProperty(t *testing.T) {
	tree := Leaf(Predicate{
		Property: descriptor.FILE_SIZE,
		Type:     TypeInt,
		Operator: OpGE,
		Operand1: 100,
	})
	compiled, err := Compile(tree)
	if err != nil {
		t.Fatal(err)
	}
	d := descriptor.NewDirectory("/d/sub", time.Now())
	if !compiled.Eval(d) {
		t.Fatal("directory should pass a predicate on an undefined numeric property")
	}
}

func TestNotInvertsChild(t *testing.T) {
	inner := Leaf(Predicate{
		Property: descriptor.FILE_SIZE,
		Type:     TypeInt,
		Operator: OpGE,
		Operand1: 100,
	})
	tree := Not(inner)
	compiledInner, _ := Compile(inner)
	compiledNot, _ := Compile(tree)

	d := fileDesc("a.png", descriptor.RASTER_PNG, 50, 1, 1, time.Now())
	if compiledInner.Eval(d) == compiledNot.Eval(d) {
		t.Fatal("NOT should invert its child's evaluation")
	}
}

func TestNotRejectsWrongChildCount(t *testing.T) {
	if _, err := Compile(Node{Combinator: CombNot, Children: []Node{}}); err == nil {
		t.Fatal("expected error for NOT with zero children")
	}
	two := []Node{
		Leaf(Predicate{Property: descriptor.FILE_SIZE, Type: TypeInt, Operator: OpGE, Operand1: 1}),
		Leaf(Predicate{Property: descriptor.FILE_SIZE, Type: TypeInt, Operator: OpGE, Operand1: 2}),
	}
	if _, err := Compile(Node{Combinator: CombNot, Children: two}); err == nil {
		t.Fatal("expected error for NOT with two children")
	}
}

func TestByteUnitSuffixNormalisation(t *testing.T) {
	tree := Leaf(Predicate{
		Property: descriptor.FILE_SIZE,
		Type:     TypeInt,
		Operator: OpGE,
		Operand1: "4MiB",
	})
	compiled, err := Compile(tree)
	if err != nil {
		t.Fatal(err)
	}
	big := fileDesc("b.kra", descriptor.KRA, 5<<20, 1, 1, time.Now())
	small := fileDesc("a.png", descriptor.RASTER_PNG, 1<<20, 1, 1, time.Now())
	if !compiled.Eval(big) {
		t.Fatal("5MiB file should satisfy >=4MiB")
	}
	if compiled.Eval(small) {
		t.Fatal("1MiB file should not satisfy >=4MiB")
	}
}

func TestDateOnlyEqualsMatchesWholeDay(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	tree := Leaf(Predicate{
		Property: descriptor.FILE_DATE,
		Type:     TypeDateTime,
		Operator: OpEQ,
		Operand1: day,
		DateOnly: true,
	})
	compiled, err := Compile(tree)
	if err != nil {
		t.Fatal(err)
	}
	morning := fileDesc("a.png", descriptor.RASTER_PNG, 1, 1, 1, day.Add(1*time.Hour))
	nextDay := fileDesc("a.png", descriptor.RASTER_PNG, 1, 1, 1, day.Add(25*time.Hour))
	if !compiled.Eval(morning) {
		t.Fatal("a file modified within the day should match date-only EQ")
	}
	if compiled.Eval(nextDay) {
		t.Fatal("a file modified the next day should not match")
	}
}

func TestLikeToRegex(t *testing.T) {
	pattern := LikeToRegex("a?.*.png")
	if pattern != `^a.\..*\.png$` {
		t.Fatalf("unexpected regex translation: %q", pattern)
	}
}

func TestRegexMatchOperator(t *testing.T) {
	tree := Leaf(Predicate{
		Property: descriptor.FILE_NAME,
		Type:     TypeRegex,
		Operator: OpMatch,
		Operand1: LikeToRegex("*.kra"),
	})
	compiled, err := Compile(tree)
	if err != nil {
		t.Fatal(err)
	}
	if !compiled.Eval(fileDesc("mona.kra", descriptor.KRA, 1, 1, 1, time.Now())) {
		t.Fatal("mona.kra should match *.kra")
	}
	if compiled.Eval(fileDesc("mona.png", descriptor.RASTER_PNG, 1, 1, 1, time.Now())) {
		t.Fatal("mona.png should not match *.kra")
	}
}
