package tasklist_test

import (
	"context"
	"testing"

	"taskpad/internal/service"
	"taskpad/internal/tasklist"
	"taskpad/internal/testutil"
)

const userID = "user-1"

func newSynchronizer(t *testing.T) (*tasklist.Synchronizer, *testutil.FakeBackend) {
	t.Helper()
	fake := testutil.NewFakeBackend()
	sync := tasklist.New(fake, service.Identity{UserID: userID, Email: "a@b.c"})
	return sync, fake
}

func TestLoad_NewestFirst(t *testing.T) {
	sync, fake := newSynchronizer(t)
	fake.SeedTask(userID, "first", false)
	fake.SeedTask(userID, "second", true)

	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tasks := sync.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Text != "second" || tasks[1].Text != "first" {
		t.Errorf("expected newest first, got %q then %q", tasks[0].Text, tasks[1].Text)
	}
}

func TestLoad_IgnoresOtherOwners(t *testing.T) {
	sync, fake := newSynchronizer(t)
	fake.SeedTask(userID, "mine", false)
	fake.SeedTask("user-2", "theirs", false)

	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	tasks := sync.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "mine" {
		t.Errorf("expected only owned tasks, got %v", tasks)
	}
}

func TestLoad_FailureLeavesCollectionUntouched(t *testing.T) {
	sync, fake := newSynchronizer(t)
	fake.SeedTask(userID, "kept", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	fake.ListTasksErr = service.NewOperationError("load", "network down")
	err := sync.Load(context.Background())
	if !service.IsOperationError(err) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if got := sync.Tasks(); len(got) != 1 || got[0].Text != "kept" {
		t.Errorf("collection changed on failed load: %v", got)
	}
}

func TestAdd_TrimsAndPrepends(t *testing.T) {
	sync, fake := newSynchronizer(t)
	fake.SeedTask(userID, "existing", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	task, ok, err := sync.Add(context.Background(), "  Buy milk  ")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !ok {
		t.Fatal("expected add to commit")
	}
	if task.Text != "Buy milk" {
		t.Errorf("expected trimmed text, got %q", task.Text)
	}
	if task.ID == 0 {
		t.Error("expected store-assigned id")
	}

	tasks := sync.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Text != "Buy milk" || tasks[0].Done {
		t.Errorf("expected new undone task first, got %+v", tasks[0])
	}
}

func TestAdd_WhitespaceOnlyIsNoOp(t *testing.T) {
	sync, fake := newSynchronizer(t)

	_, ok, err := sync.Add(context.Background(), "   \t  ")
	if err != nil {
		t.Fatalf("expected silent no-op, got error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for whitespace-only text")
	}
	if n := sync.TotalCount(); n != 0 {
		t.Errorf("collection length changed: %d", n)
	}
	if calls := fake.Calls(); len(calls) != 0 {
		t.Errorf("expected no request issued, got %v", calls)
	}
}

func TestAdd_FailureLeavesCollectionUnchanged(t *testing.T) {
	sync, fake := newSynchronizer(t)
	fake.CreateTaskErr = service.NewOperationError("add", "insert rejected")

	_, ok, err := sync.Add(context.Background(), "doomed")
	if !service.IsOperationError(err) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if ok {
		t.Error("expected ok=false on failure")
	}
	if n := sync.TotalCount(); n != 0 {
		t.Errorf("expected nothing inserted, got %d tasks", n)
	}
}

func TestToggle_FlipsExactlyOneTask(t *testing.T) {
	sync, fake := newSynchronizer(t)
	t1 := fake.SeedTask(userID, "one", false)
	t2 := fake.SeedTask(userID, "two", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := sync.Toggle(context.Background(), t1.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	for _, task := range sync.Tasks() {
		switch task.ID {
		case t1.ID:
			if !task.Done {
				t.Error("expected toggled task to be done")
			}
		case t2.ID:
			if task.Done {
				t.Error("expected other task unchanged")
			}
		}
	}
}

func TestToggle_FailureLeavesStateUnchanged(t *testing.T) {
	sync, fake := newSynchronizer(t)
	task := fake.SeedTask(userID, "one", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	fake.SetTaskDoneErr = service.NewOperationError("toggle", "update rejected")
	err := sync.Toggle(context.Background(), task.ID)
	if !service.IsOperationError(err) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if got := sync.Tasks(); got[0].Done {
		t.Error("local flip applied despite remote failure")
	}
}

func TestToggle_UnknownID(t *testing.T) {
	sync, _ := newSynchronizer(t)
	if err := sync.Toggle(context.Background(), 99); !service.IsOperationError(err) {
		t.Fatalf("expected OperationError, got %v", err)
	}
}

func TestDelete_RemovesImmediately(t *testing.T) {
	sync, fake := newSynchronizer(t)
	task := fake.SeedTask(userID, "bye", false)
	fake.SeedTask(userID, "stay", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := sync.Delete(context.Background(), task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	tasks := sync.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "stay" {
		t.Errorf("expected only remaining task, got %v", tasks)
	}
}

func TestDelete_FailureRestoresExactSnapshot(t *testing.T) {
	sync, fake := newSynchronizer(t)
	fake.SeedTask(userID, "one", false)
	t2 := fake.SeedTask(userID, "two", true)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	before := sync.Tasks()

	fake.DeleteTaskErr = service.NewOperationError("delete", "network down")
	err := sync.Delete(context.Background(), t2.ID)
	if !service.IsOperationError(err) {
		t.Fatalf("expected OperationError, got %v", err)
	}

	after := sync.Tasks()
	if len(after) != len(before) {
		t.Fatalf("expected %d tasks after rollback, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("rollback order mismatch at %d: want %+v, got %+v", i, before[i], after[i])
		}
	}
}

func TestCompletionPercentage(t *testing.T) {
	sync, fake := newSynchronizer(t)

	if got := sync.CompletionPercentage(); got != 0 {
		t.Errorf("expected 0%% for empty collection, got %v", got)
	}

	fake.SeedTask(userID, "one", true)
	fake.SeedTask(userID, "two", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := sync.CompletionPercentage(); got != 50 {
		t.Errorf("expected 50%%, got %v", got)
	}
	if got := sync.CompletedCount(); got != 1 {
		t.Errorf("expected 1 completed, got %d", got)
	}
	if got := sync.TotalCount(); got != 2 {
		t.Errorf("expected 2 total, got %d", got)
	}
}

func TestScenario_AddToEmptyCollection(t *testing.T) {
	sync, _ := newSynchronizer(t)

	if _, _, err := sync.Add(context.Background(), "Buy milk"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	tasks := sync.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" || tasks[0].Done {
		t.Errorf("unexpected collection: %v", tasks)
	}
	if sync.TotalCount() != 1 {
		t.Errorf("expected total 1, got %d", sync.TotalCount())
	}
	if sync.CompletionPercentage() != 0 {
		t.Errorf("expected 0%%, got %v", sync.CompletionPercentage())
	}
}

func TestScenario_ToggleHalfway(t *testing.T) {
	sync, fake := newSynchronizer(t)
	t1 := fake.SeedTask(userID, "one", false)
	fake.SeedTask(userID, "two", false)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := sync.Toggle(context.Background(), t1.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if got := sync.CompletionPercentage(); got != 50 {
		t.Errorf("expected 50%%, got %v", got)
	}
}
