package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/modules"
)

func sampleTrajectory() modules.Trajectory {
	var traj modules.Trajectory
	traj.Append(0, dynamo.State{1.0, 0.0})
	traj.Append(0.1, dynamo.State{0.9950041652780258, -0.09983341664682815})
	traj.Append(0.30000000000000004, dynamo.State{1e-300, -2.5})
	return traj
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Problem:  "oscillator",
		Scheme:   "rk4",
		Params:   map[string]float64{"omega": 1},
		T0:       0,
		TEnd:     0.3,
		Adaptive: false,
		H0:       0.1,
		Metrics:  map[string]float64{"accepted": 3},
	}
	runID, err := st.Save(meta, sampleTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, loaded.ID)
	}
	if loaded.Problem != "oscillator" || loaded.Scheme != "rk4" {
		t.Errorf("unexpected metadata %+v", loaded)
	}
	if loaded.Metrics["accepted"] != 3 {
		t.Errorf("expected accepted 3, got %f", loaded.Metrics["accepted"])
	}
	if loaded.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}

	traj, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	want := sampleTrajectory()
	if traj.Len() != want.Len() {
		t.Fatalf("expected %d points, got %d", want.Len(), traj.Len())
	}
	for i := range want.Times {
		if traj.Times[i] != want.Times[i] {
			t.Errorf("time %d: %v != %v", i, traj.Times[i], want.Times[i])
		}
		for j := range want.States[i] {
			if traj.States[i][j] != want.States[i][j] {
				t.Errorf("state %d,%d: %v != %v", i, j, traj.States[i][j], want.States[i][j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, scheme := range []string{"kc43", "dopri54"} {
		if _, err := st.Save(RunMetadata{Problem: "van-der-pol", Scheme: scheme}, sampleTrajectory()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(st.baseDir, "not-a-run"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Problem: "exponential", Scheme: "euler"}, sampleTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	if err != nil {
		t.Fatalf("states.csv not created: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("time,y0,y1\n0,1,0\n")) {
		t.Errorf("unexpected csv:\n%s", data)
	}
}

func TestStoreBadRunID(t *testing.T) {
	st := New(t.TempDir())
	for _, id := range []string{"", "../etc", "short"} {
		if _, err := st.Load(id); !errors.Is(err, ErrBadRunID) {
			t.Errorf("Load(%q): expected ErrBadRunID, got %v", id, err)
		}
		if _, err := st.LoadStates(id); !errors.Is(err, ErrBadRunID) {
			t.Errorf("LoadStates(%q): expected ErrBadRunID, got %v", id, err)
		}
	}
}

func TestStoreCorruptStates(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Problem: "exponential"}, sampleTrajectory())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(st.baseDir, runID, "states.csv")
	if err := os.WriteFile(path, []byte("time,y0\n0,abc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadStates(runID); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "x", Problem: "oscillator", Scheme: "rk4"}
	if err := ExportJSON(&buf, meta, sampleTrajectory()); err != nil {
		t.Fatal(err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Problem != "oscillator" || out.Steps != 3 || len(out.States) != 3 {
		t.Errorf("unexpected export %+v", out)
	}
	if out.States[1][1] != -0.09983341664682815 {
		t.Errorf("precision lost: %v", out.States[1][1])
	}
}
