package facts

import (
	"reflect"
	"testing"

	"depgrade/levels"
)

func TestBuilderSnapshot(t *testing.T) {
	b := NewBuilder()
	b.AddRepository("r2", "two").
		AddRepository("r1", "one").
		RecordCheck("r1", "check_b", true).
		RecordCheck("r1", "check_a", true).
		RecordCheck("r1", "check_c", false). // not materialized
		AddDependency("r1", "r2").
		AddDependency("r1", "r2"). // duplicate collapses
		AddDependency("r2", "r2")  // self-loop accepted

	s := b.Build()

	repos := s.AllRepositories()
	if len(repos) != 2 || repos[0].ID != "r1" || repos[1].ID != "r2" {
		t.Fatalf("AllRepositories() = %v, want r1 then r2", repos)
	}
	if repos[1].Name != "two" {
		t.Errorf("repo r2 name = %q, want %q", repos[1].Name, "two")
	}

	wantChecks := []levels.CheckName{"check_a", "check_b"}
	if got := s.PassedChecks("r1"); !reflect.DeepEqual(got, wantChecks) {
		t.Errorf("PassedChecks(r1) = %v, want %v", got, wantChecks)
	}
	if got := s.PassedChecks("r2"); got != nil {
		t.Errorf("PassedChecks(r2) = %v, want nil", got)
	}

	if got := s.Dependencies("r1"); !reflect.DeepEqual(got, []RepoID{"r2"}) {
		t.Errorf("Dependencies(r1) = %v, want [r2]", got)
	}
	if got := s.Dependencies("r2"); !reflect.DeepEqual(got, []RepoID{"r2"}) {
		t.Errorf("Dependencies(r2) = %v, want the self-loop", got)
	}
}

func TestBuilderUnknownRepoIsEmpty(t *testing.T) {
	s := NewBuilder().AddRepository("r1", "one").Build()

	if got := s.PassedChecks("ghost"); got != nil {
		t.Errorf("PassedChecks(ghost) = %v, want nil", got)
	}
	if got := s.Dependencies("ghost"); got != nil {
		t.Errorf("Dependencies(ghost) = %v, want nil", got)
	}
	if s.Contains("ghost") {
		t.Error("Contains(ghost) = true, want false")
	}
	if !s.Contains("r1") {
		t.Error("Contains(r1) = false, want true")
	}
}

func TestBuilderIsolationAfterBuild(t *testing.T) {
	b := NewBuilder().AddRepository("r1", "one")
	b.RecordCheck("r1", "check_a", true)

	first := b.Build()

	b.AddRepository("r2", "two")
	b.RecordCheck("r1", "check_b", true)
	b.AddDependency("r1", "r2")

	if got := len(first.AllRepositories()); got != 1 {
		t.Errorf("first snapshot has %d repos after later additions, want 1", got)
	}
	if got := first.PassedChecks("r1"); len(got) != 1 {
		t.Errorf("first snapshot PassedChecks(r1) = %v, want one check", got)
	}
	if got := first.Dependencies("r1"); got != nil {
		t.Errorf("first snapshot Dependencies(r1) = %v, want nil", got)
	}

	second := b.Build()
	if got := len(second.AllRepositories()); got != 2 {
		t.Errorf("second snapshot has %d repos, want 2", got)
	}
}

func TestRepositoryNameLastWriteWins(t *testing.T) {
	s := NewBuilder().
		AddRepository("r1", "old").
		AddRepository("r1", "new").
		Build()

	repos := s.AllRepositories()
	if len(repos) != 1 || repos[0].Name != "new" {
		t.Fatalf("AllRepositories() = %v, want single repo named %q", repos, "new")
	}
}
