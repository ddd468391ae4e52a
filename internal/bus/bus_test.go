package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestPidManager(t *testing.T) {
	pm := &pidManager{path: filepath.Join(t.TempDir(), PidName)}

	t.Run("create and remove", func(t *testing.T) {
		if err := pm.create(); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		pidData, err := os.ReadFile(pm.path)
		if err != nil {
			t.Fatalf("failed to read PID file: %v", err)
		}
		if want := strconv.Itoa(os.Getpid()); string(pidData) != want {
			t.Errorf("PID file contains %q, expected %q", pidData, want)
		}
		if err := pm.remove(); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := os.Stat(pm.path); !os.IsNotExist(err) {
			t.Error("PID file should not exist after removal")
		}
	})

	t.Run("no PID file", func(t *testing.T) {
		if err := pm.checkExisting(); err != nil {
			t.Errorf("checkExisting should not error without a PID file: %v", err)
		}
	})

	t.Run("live process", func(t *testing.T) {
		if err := pm.create(); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		defer pm.remove()
		if err := pm.checkExisting(); err == nil {
			t.Error("checkExisting should fail while the owning process is alive")
		}
	})

	stale := []struct {
		name    string
		content string
	}{
		{name: "stale pid", content: "99999999"},
		{name: "garbage", content: "invalid"},
		{name: "negative", content: "-4"},
	}
	for _, tt := range stale {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(pm.path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("failed to write PID file: %v", err)
			}
			if err := pm.checkExisting(); err != nil {
				t.Errorf("checkExisting should accept a stale PID file: %v", err)
			}
			if _, err := os.Stat(pm.path); !os.IsNotExist(err) {
				t.Error("stale PID file should be removed")
			}
		})
	}
}

func TestIsProcessAlive(t *testing.T) {
	pm := &pidManager{}
	if !pm.isProcessAlive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	if pm.isProcessAlive(99999999) {
		t.Error("non-existent process should not be alive")
	}
	if pm.isProcessAlive(0) {
		t.Error("pid 0 should not be considered alive")
	}
}

// serve answers each request with handle's reply until the listener closes.
func serve(t *testing.T, sm *socketManager, handle func(cmd byte, payload string) string) {
	t.Helper()
	listener, err := sm.listen()
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				line, err := bufio.NewReader(c).ReadString('\n')
				if err != nil {
					return
				}
				cmd, payload, err := ParseRequest(line)
				if err != nil {
					fmt.Fprint(c, Error(err))
					return
				}
				fmt.Fprint(c, handle(cmd, payload))
			}(conn)
		}
	}()
}

func TestSocketManagerSend(t *testing.T) {
	sm := &socketManager{path: filepath.Join(t.TempDir(), SockName)}

	t.Run("dial without listener", func(t *testing.T) {
		if _, err := sm.dial(); err == nil {
			t.Error("dial should fail when no listener exists")
		}
	})

	serve(t, sm, func(cmd byte, payload string) string {
		switch cmd {
		case CmdStatus:
			return Status("running", "true", "staged", "3")
		case CmdVersion:
			return Status("proto", ProtoVer)
		case CmdLive, CmdFinal:
			return OK(fmt.Sprintf("%c:%s", cmd, payload))
		case CmdQuit:
			return OK("quitting")
		default:
			return Error(fmt.Errorf("unknown=%q", cmd))
		}
	})

	tests := []struct {
		name    string
		cmd     byte
		payload string
		want    string
	}{
		{name: "status", cmd: CmdStatus, want: "STATUS running=true staged=3"},
		{name: "version", cmd: CmdVersion, want: "STATUS proto=" + ProtoVer},
		{name: "live payload", cmd: CmdLive, payload: "hello there", want: "OK l:hello there"},
		{name: "multiline payload", cmd: CmdFinal, payload: "one\ntwo\r\nthree", want: "OK f:one two three"},
		{name: "quit", cmd: CmdQuit, want: "OK quitting"},
		{name: "unknown", cmd: 'x', want: "ERR unknown='x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sm.send(tt.cmd, tt.payload)
			if err != nil {
				t.Fatalf("send failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		line        string
		wantCmd     byte
		wantPayload string
		wantErr     error
	}{
		{line: "s\n", wantCmd: 's'},
		{line: "lhello world\n", wantCmd: 'l', wantPayload: "hello world"},
		{line: "fdone\r\n", wantCmd: 'f', wantPayload: "done"},
		{line: "\n", wantErr: ErrEmptyRequest},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.line), func(t *testing.T) {
			cmd, payload, err := ParseRequest(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if cmd != tt.wantCmd || payload != tt.wantPayload {
				t.Errorf("got (%q, %q), want (%q, %q)", cmd, payload, tt.wantCmd, tt.wantPayload)
			}
		})
	}
}

func TestReplies(t *testing.T) {
	if got := OK("paused"); got != "OK paused\n" {
		t.Errorf("OK() = %q", got)
	}
	if got := Error(errors.New("bad\nthing")); got != "ERR bad thing\n" {
		t.Errorf("Error() = %q", got)
	}
	if got := Status("a", "1", "b"); got != "STATUS a=1\n" {
		t.Errorf("Status() with odd pairs = %q", got)
	}
}

func TestPathFunctions(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	sp, err := SockPath()
	if err != nil {
		t.Fatalf("SockPath failed: %v", err)
	}
	if want := filepath.Join(cache, "hyprcaption", SockName); sp != want {
		t.Errorf("SockPath() = %s, want %s", sp, want)
	}

	pp, err := PidPath()
	if err != nil {
		t.Fatalf("PidPath failed: %v", err)
	}
	if filepath.Dir(pp) != filepath.Dir(sp) || filepath.Base(pp) != PidName {
		t.Errorf("PidPath() = %s, want %s next to the socket", pp, PidName)
	}
}

func TestPublicAPI(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if err := CheckExistingDaemon(); err != nil {
		t.Errorf("CheckExistingDaemon should succeed when no daemon running: %v", err)
	}
	if err := CreatePidFile(); err != nil {
		t.Fatalf("CreatePidFile failed: %v", err)
	}
	if err := CheckExistingDaemon(); err == nil {
		t.Error("CheckExistingDaemon should see this process as the running daemon")
	}
	if err := RemovePidFile(); err != nil {
		t.Fatalf("RemovePidFile failed: %v", err)
	}

	if _, err := SendCommand(CmdStatus); err == nil {
		t.Error("SendCommand should fail without a daemon")
	}

	l, err := Listen()
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer l.Close()
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err == nil {
			fmt.Fprint(conn, OK("cleared"))
		}
	}()
	got, err := SendCommand(CmdClear)
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if got != "OK cleared" {
		t.Errorf("reply = %q, want OK cleared", got)
	}
}
