package main

type sessionKey string

const playerIDSessionKey = sessionKey("playerID")

// playerIDLength gives 32 random letters, comfortably collision-free for
// anonymous players.
const playerIDLength = 32
