package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/ogc-mcp/internal/ogc"
)

// describeError turns an upstream client error into the text returned
// to the MCP client. The operation string names what was being
// attempted; hints steer the client toward a recovering call.
func describeError(err error, operation string) string {
	switch {
	case errors.Is(err, ogc.ErrServerNotFound):
		return fmt.Sprintf("Error %s: the OGC API server could not be reached. "+
			"Check that the server_url is correct and the server is online. (%v)", operation, err)
	case errors.Is(err, ogc.ErrCollectionNotFound):
		return fmt.Sprintf("Error %s: the collection does not exist on this server. "+
			"Call get_collections to list valid collection IDs. (%v)", operation, err)
	case errors.Is(err, ogc.ErrProcessNotFound):
		return fmt.Sprintf("Error %s: the process does not exist on this server. "+
			"Call discover_processes to list valid process IDs. (%v)", operation, err)
	case errors.Is(err, ogc.ErrJobNotFound):
		return fmt.Sprintf("Error %s: the job does not exist on this server. "+
			"Job IDs come from an asynchronous execute_process response. (%v)", operation, err)
	case errors.Is(err, ogc.ErrExecutionFailed):
		return fmt.Sprintf("Error %s: the server rejected or failed the execution. "+
			"Check the inputs against get_process_detail. (%v)", operation, err)
	case errors.Is(err, ogc.ErrTimeout):
		return fmt.Sprintf("Error %s: the operation timed out. "+
			"Try again, or use async_execute for long-running processes. (%v)", operation, err)
	case errors.Is(err, ogc.ErrNotFound):
		return fmt.Sprintf("Error %s: the requested resource was not found on the server. (%v)", operation, err)
	default:
		return fmt.Sprintf("Error %s: %v", operation, err)
	}
}
