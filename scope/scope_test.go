package scope

import (
	"testing"

	"github.com/shadowCow/typethon-go/atom"
)

func TestNewGlobalSeedsBuiltinNames(t *testing.T) {
	g := NewGlobal()
	for _, name := range []string{"None", "Ellipsis", "type", "bool", "str", "int", "float", "complex"} {
		if g.Get(name) == nil {
			t.Fatalf("expected builtin %q to be bound in a fresh global scope", name)
		}
	}
	if g.Get("not_a_builtin") != nil {
		t.Fatal("unexpected binding for a name nothing seeds")
	}
}

func TestChildScopeShadowsParentWithoutMutatingIt(t *testing.T) {
	g := NewGlobal()
	g.Add("x", atom.STRING_)

	child := g.NewChild(Function)
	child.Add("x", atom.INTEGER_)

	if got := child.Get("x").Atom.Kind; got != atom.INTEGER {
		t.Fatalf("child's own binding should win, got kind %v", got)
	}
	if got := g.Get("x").Atom.Kind; got != atom.STRING {
		t.Fatal("adding to the child must not mutate the parent's binding")
	}
}

func TestChildScopeFallsThroughToParent(t *testing.T) {
	g := NewGlobal()
	g.Add("shared", atom.BOOL_)
	child := g.NewChild(Class)

	sym := child.Get("shared")
	if sym == nil {
		t.Fatal("expected the child to find a parent-scope binding")
	}
	if sym.Atom.Kind != atom.BOOL {
		t.Fatalf("got kind %v, want BOOL", sym.Atom.Kind)
	}
}

func TestGetReturnsNilAtRootOnMiss(t *testing.T) {
	g := NewGlobal()
	if g.Get("never_bound") != nil {
		t.Fatal("expected nil for a name bound nowhere in the chain")
	}
}

func TestKindPredicates(t *testing.T) {
	g := NewGlobal()
	if !g.IsGlobal() || g.IsClass() || g.IsFunction() {
		t.Fatal("a fresh global scope should report IsGlobal only")
	}
	fn := g.NewChild(Function)
	if !fn.IsFunction() || fn.IsGlobal() || fn.IsClass() {
		t.Fatal("a function child scope should report IsFunction only")
	}
}
