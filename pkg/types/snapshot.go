package types

// RoomState:
//   code: string
//   hostId: string
//   hasWinner: boolean
//   currentWinner: string
//   winners: string[]
//   players: string[] // names only, join order
//   readyPlayers: string[] // names
//   allReady: boolean
//   requireReady: boolean
//   countdownSeconds: number
//   isCountingDown: boolean
//   countdownEndTime: number // unix ms, 0 unless counting down
//
// Press:
//   playerId: string
//   playerName: string
//   pressTimeMs: number // elapsed since roundStartTime, server clock
//   rank: number // arrival order, starting at 1
