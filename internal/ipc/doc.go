// Package ipc finds and talks to the control socket of the mpv instance the
// player runs underneath it.
//
// The socket path is not chosen by us: the player passes it to its mpv child
// as --input-ipc-server=<path>, so the resolver reads it back out of the
// process tree. Queries use mpv's JSON IPC protocol, one object per line.
package ipc
