package types

// Client -> Server
// create_room: {}
//
// join_room:
//   code: string (6 hex chars, case-insensitive)
//
// leave_room: {}
//
// change_name:
//   newName: string
//
// press: {}
//   During ready-gating this marks the sender ready; during an active round
//   it is a buzz.
//
// reset: {}
//   Host only. Ends the active round, or starts the countdown for a new one.
//
// update_countdown:
//   seconds: number | string (clamped to 1-10, fallback 3)

// Server -> Client (direct to sender)
// room_created:
//   code: string
//   name: string
//
// joined_room:
//   name: string
//
// name_changed:
//   name: string
//
// error_msg:
//   message: string

// Server -> Client (room-wide)
// state: { state: RoomState }  // after every state-affecting operation
//
// countdown_start:
//   countdownSeconds: number
//   serverTime: number (unix ms)
//
// countdown_end:
//   roundStartTime: number (unix ms, authoritative)
//
// press_recorded:
//   presses: Press[]
//
// round_ended:
//   winner: string
//   winners: string[]
//   presses: Press[]
