package system

import "sync"

// ProcessCreationLock serializes pipe creation and process start across all
// concurrent calls to StartProcess.
//
// A pipe only reports EOF once every copy of its write end is closed. If a
// process is started while another spawn holds a freshly created pipe, the
// write end may be inherited by the wrong child, and the reader of that pipe
// waits for EOF until an unrelated process exits. Holding this lock from pipe
// creation until the child-owned ends are closed in the parent rules that out.
var ProcessCreationLock sync.Mutex
