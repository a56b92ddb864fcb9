package handlers

import "github.com/gin-gonic/gin"

// Delete events carry only the id of the removed row, keyed by its
// kind, so clients can evict it from local state.

func assignmentDeletedPayload(assignmentID uint) gin.H {
	return gin.H{"assignment_id": assignmentID}
}

func submissionDeletedPayload(submissionID uint) gin.H {
	return gin.H{"submission_id": submissionID}
}

func messageDeletedPayload(messageID uint) gin.H {
	return gin.H{"message_id": messageID}
}
