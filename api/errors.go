/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"errors"

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": {"code", "message"}}. Errors that
// are not an APIError are reported as internal without their text.
func respondError(c *gin.Context, err error) {
	var apiErr apierror.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierror.NewAPIError(apierror.ErrInternalServer, "Internal server error", err)
	}
	c.JSON(apierror.MapErrorToHTTPStatus(apiErr), gin.H{"error": apiErr})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
}
