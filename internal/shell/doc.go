/*
Package shell implements the interactive command language of docfs.

A Session owns the current directory and dispatches one line at a time to
the filesystem verbs (ls, cat, tail, read, nl, grep, glob, touch, edit,
mkdir, write_file, cp, curl, pwd, cd). The only compositions supported are
piping curl output into write_file and redirecting curl output with '>'.

Errors never end a session: Run prints them as "Error: <msg>" and reads the
next line. Execute returns them to callers that render output themselves,
such as the WebSocket shell.
*/
package shell
